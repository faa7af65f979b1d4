package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/capwright/pkg/keycap"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms definition source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: cherry-mx -> cherry_mx
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator).
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_cherry) and plain strings
// ("cherry"). Underscores introduced by kebab-case conversion are mapped
// back to hyphens so (:stem :cherry-mx) round-trips.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	name := str.S
	if strings.HasPrefix(name, kwPrefix) {
		name = name[len(kwPrefix):]
	}
	return strings.ReplaceAll(name, "_", "-"), nil
}

// toWidth accepts a bare number of units or a string like "1.25u".
func toWidth(s zygo.Sexp) (keycap.Width, error) {
	switch v := s.(type) {
	case *zygo.SexpInt, *zygo.SexpFloat:
		f, _ := toFloat64(v)
		return keycap.ParseWidth(fmt.Sprintf("%g", f))
	case *zygo.SexpStr:
		return keycap.ParseWidth(v.S)
	}
	return 0, fmt.Errorf("expected width (number of units or \"1.25u\"), got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the capwright DSL builtins into a zygomys
// environment. The builtins populate the provided Script during
// evaluation. Source code must be preprocessed with preprocessSource()
// first so that :keyword tokens are recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, script *Script) {

	// -----------------------------------------------------------------------
	// (keycap :name "esc" :width "1u" :profile :cherry :row 1
	//         :bevel 0.4 :stem :cherry-mx :wall 0.91)
	// -----------------------------------------------------------------------
	env.AddFunction("keycap", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		params := keycap.Defaults()
		capName := fmt.Sprintf("keycap_%d", len(script.Caps)+1)

		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: name: %w", err)
			}
			capName = s
		}
		if v, ok := pa.kw["width"]; ok {
			w, err := toWidth(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: width: %w", err)
			}
			params.Width = w
		}
		if v, ok := pa.kw["profile"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: profile: %w", err)
			}
			fam, err := keycap.ParseFamily(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: %w", err)
			}
			params.Family = fam
		}
		if v, ok := pa.kw["row"]; ok {
			r, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: row: %w", err)
			}
			params.Row = keycap.Row(r)
		}
		if v, ok := pa.kw["bevel"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: bevel: %w", err)
			}
			params.BevelRadius = f
		}
		if v, ok := pa.kw["stem"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: stem: %w", err)
			}
			st, err := keycap.ParseStem(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: %w", err)
			}
			params.Stem = st
		}
		if v, ok := pa.kw["wall"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keycap: wall: %w", err)
			}
			params.WallThickness = f
		}

		// Reject invalid combinations at the boundary, before any
		// geometry runs.
		if err := params.Validate(script.Table); err != nil {
			return zygo.SexpNull, fmt.Errorf("keycap %q: %w", capName, err)
		}

		script.Caps = append(script.Caps, CapSpec{Name: capName, Params: params})
		return &zygo.SexpStr{S: capName}, nil
	})

	// -----------------------------------------------------------------------
	// (defprofile :family :cherry :row 5 :height 9.0
	//             :top-inset 2.75 :taper 3.4 :mid 0.46)
	//
	// Registers a profile row over the built-in table for this script.
	// -----------------------------------------------------------------------
	env.AddFunction("defprofile", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var fam keycap.Family
		if v, ok := pa.kw["family"]; ok {
			s, err := toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defprofile: family: %w", err)
			}
			fam, err = keycap.ParseFamily(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defprofile: %w", err)
			}
		} else {
			return zygo.SexpNull, fmt.Errorf("defprofile: family is required")
		}

		row, err := requireInt(pa, "row")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defprofile: %w", err)
		}
		height, err := requireFloat(pa, "height")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defprofile: %w", err)
		}
		topInset, err := requireFloat(pa, "top-inset")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defprofile: %w", err)
		}
		taper, err := requireFloat(pa, "taper")
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("defprofile: %w", err)
		}

		mid := 0.5
		if v, ok := pa.kw["mid"]; ok {
			mid, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("defprofile: mid: %w", err)
			}
		}

		def := keycap.ProfileDefinition{
			Family:    fam,
			Row:       keycap.Row(row),
			CapHeight: height,
			Samples: []keycap.ControlSample{
				{Height: 0, Inset: 0, Taper: 0},
				{Height: 0.5, Inset: topInset * mid, Taper: taper * 0.5},
				{Height: 1, Inset: topInset, Taper: taper},
			},
		}
		if err := script.Table.Register(def); err != nil {
			return zygo.SexpNull, fmt.Errorf("defprofile: %w", err)
		}

		return zygo.SexpNull, nil
	})
}

// requireFloat fetches a mandatory numeric keyword argument.
func requireFloat(pa kwArgs, name string) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// requireInt fetches a mandatory integer keyword argument.
func requireInt(pa kwArgs, name string) (int, error) {
	v, ok := pa.kw[name]
	if !ok {
		return 0, fmt.Errorf("%s is required", name)
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}
