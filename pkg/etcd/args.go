package etcd

import (
	"fmt"
	"slices"
	"strings"
)

// Separator ends the option part of an argument list. Every token after it is
// query data.
const Separator = "--"

// Recognized options.
const (
	// OptRaw returns the response body as received, without JSON interpretation.
	OptRaw = "-raw"
	// OptNoValue suppresses the value field on write.
	OptNoValue = "-noval"
	// OptIgnore is a synonym of OptNoValue.
	OptIgnore = "-ignore"
)

// FlagSpec declares an option recognized by an operation. A unary option
// consumes the token that follows it as its value.
type FlagSpec struct {
	Name  string
	Unary bool
}

// Options recognized by the key operations.
var (
	ReadFlags   = []FlagSpec{{Name: OptRaw}}
	WriteFlags  = []FlagSpec{{Name: OptRaw}, {Name: OptNoValue}, {Name: OptIgnore}}
	DeleteFlags = []FlagSpec{{Name: OptRaw}}
)

// Option is an option found in an argument list.
type Option struct {
	Name  string
	Value string
}

// Args is an argument list split into client options and query arguments.
type Args struct {
	Options map[string]Option
	Query   []QueryArg
}

// Has reports whether the named option was given.
func (a *Args) Has(name string) bool {
	_, ok := a.Options[name]

	return ok
}

// Value returns the value of a unary option, or an empty string.
func (a *Args) Value(name string) string {
	return a.Options[name].Value
}

// AddQuery appends a query argument.
func (a *Args) AddQuery(name, value string) {
	a.Query = append(a.Query, QueryArg{Name: name, Value: value})
}

// PrependQuery inserts a query argument ahead of the others.
func (a *Args) PrependQuery(name, value string) {
	a.Query = slices.Insert(a.Query, 0, QueryArg{Name: name, Value: value})
}

// QueryTokens returns the query arguments as a flat name, value, ... list.
func (a *Args) QueryTokens() []string {
	tokens := make([]string, 0, len(a.Query)*2)
	for _, arg := range a.Query {
		tokens = append(tokens, arg.Name, arg.Value)
	}

	return tokens
}

// ExtractFlag removes the first occurrence of the flag from tokens, together
// with its value when the flag is unary. The slice is left untouched when the
// flag is absent. A unary flag in last position is removed and reported with
// an empty value.
func ExtractFlag(tokens *[]string, spec FlagSpec) (bool, string) {
	list := *tokens

	for idx, token := range list {
		if token != spec.Name {
			continue
		}

		end := idx + 1
		value := ""

		if spec.Unary && end < len(list) {
			value = list[end]
			end++
		}

		*tokens = append(list[:idx:idx], list[end:]...)

		return true, value
	}

	return false, ""
}

// SeparateArgs splits tokens into client options and query arguments.
//
// When a Separator token is present, tokens before it must all be recognized
// options and tokens after it are query data, verbatim. Without a separator
// recognized options are extracted from anywhere in the list and every other
// token, dash-led or not, stays query data. A query value that happens to be
// spelled like a recognized option is therefore taken as that option.
func SeparateArgs(tokens []string, specs ...FlagSpec) (*Args, error) {
	args := &Args{Options: make(map[string]Option)}

	var queryTokens []string

	if idx := slices.Index(tokens, Separator); idx >= 0 {
		optionTokens := slices.Clone(tokens[:idx])
		args.extract(&optionTokens, specs)

		if len(optionTokens) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownOption, strings.Join(optionTokens, " "))
		}

		queryTokens = slices.Clone(tokens[idx+1:])
	} else {
		queryTokens = slices.Clone(tokens)
		args.extract(&queryTokens, specs)
	}

	if len(queryTokens)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d tokens", ErrOddQueryArguments, len(queryTokens))
	}

	for idx := 0; idx < len(queryTokens); idx += 2 {
		args.AddQuery(queryTokens[idx], queryTokens[idx+1])
	}

	return args, nil
}

func (a *Args) extract(tokens *[]string, specs []FlagSpec) {
	for _, spec := range specs {
		found, value := ExtractFlag(tokens, spec)
		if found {
			a.Options[spec.Name] = Option{Name: spec.Name, Value: value}
		}
	}
}
