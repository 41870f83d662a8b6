package command

import (
	"regexp"
	"strconv"
	"strings"
)

type ArgKind int

const (
	KindString ArgKind = iota
	KindInteger
	KindBoolean
	KindUser
	KindChannel
	KindRole
)

func (k ArgKind) String() string {
	switch k {
	case KindInteger:
		return "number"
	case KindBoolean:
		return "yes/no"
	case KindUser:
		return "user"
	case KindChannel:
		return "channel"
	case KindRole:
		return "role"
	default:
		return "text"
	}
}

// ArgDef declares one positional argument.
type ArgDef struct {
	Name        string
	Kind        ArgKind
	Required    bool
	Rest        bool // consumes every remaining token; must be last
	Description string
	Validate    func(v any) error
}

// Args holds parsed argument values keyed by name. Optional arguments that
// were not supplied are absent, not zero.
type Args map[string]any

// Has reports whether name was supplied.
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a text, reference or rest value, or "" when absent.
func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns an integer value, or def when absent.
func (a Args) Int(name string, def int64) int64 {
	if n, ok := a[name].(int64); ok {
		return n
	}
	return def
}

// Bool returns a boolean value, false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

var (
	userMention    = regexp.MustCompile(`^<@!?(\d+)>$`)
	channelMention = regexp.MustCompile(`^<#(\d+)>$`)
	roleMention    = regexp.MustCompile(`^<@&(\d+)>$`)

	truthy = map[string]bool{"true": true, "yes": true, "on": true, "1": true}
)

// Tokenize splits message content on whitespace.
func Tokenize(content string) []string {
	return strings.Fields(content)
}

// Parse assigns tokens to defs positionally, left to right.
func Parse(tokens []string, defs []ArgDef) (Args, error) {
	args := make(Args, len(defs))
	pos := 0
	for _, def := range defs {
		if def.Rest {
			if pos < len(tokens) {
				args[def.Name] = strings.Join(tokens[pos:], " ")
				pos = len(tokens)
			} else if def.Required {
				return nil, MissingArgument(def.Name)
			}
			continue
		}
		if pos >= len(tokens) {
			if def.Required {
				return nil, MissingArgument(def.Name)
			}
			continue
		}
		v, err := coerce(def, tokens[pos])
		if err != nil {
			return nil, err
		}
		args[def.Name] = v
		pos++
	}
	return args, nil
}

func coerce(def ArgDef, tok string) (any, error) {
	switch def.Kind {
	case KindInteger:
		n, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return nil, InvalidArgument(def.Name, "must be a number")
		}
		return n, nil
	case KindBoolean:
		return truthy[strings.ToLower(tok)], nil
	case KindUser:
		return stripMention(userMention, tok), nil
	case KindChannel:
		return stripMention(channelMention, tok), nil
	case KindRole:
		return stripMention(roleMention, tok), nil
	default:
		return tok, nil
	}
}

func stripMention(re *regexp.Regexp, tok string) string {
	if m := re.FindStringSubmatch(tok); m != nil {
		return m[1]
	}
	return strings.Trim(tok, "<@!&#>")
}
