package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"gopkg.in/yaml.v3"

	"github.com/marrow-lang/marrow/lang/scanner"
	"github.com/marrow-lang/marrow/lang/token"
)

// tokenYAML is the --format=yaml shape for one scanned token.
type tokenYAML struct {
	Line   int    `yaml:"line"`
	Kind   string `yaml:"kind"`
	Lexeme string `yaml:"lexeme,omitempty"`
}

// Tokenize prints the token stream of each file in args, one token per line
// by default, or as a YAML document per file with --format=yaml. Grounded on
// the teacher repo's internal/maincmd/tokenize.go.
func (c *Cmd) Tokenize(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
			return &exitError{code: exitCompileError}
		}
		if err := tokenizeFile(stdio, path, string(src), c.Format == formatYAML); err != nil {
			return err
		}
	}
	return nil
}

func tokenizeFile(stdio mainer.Stdio, path, src string, asYAML bool) error {
	s := scanner.NewKeepNewlines(src)

	var toks []tokenYAML
	for {
		tok := s.Next()

		if asYAML {
			toks = append(toks, tokenYAML{Line: tok.Line, Kind: tok.Kind.String(), Lexeme: tok.Lexeme})
		} else {
			fmt.Fprintf(stdio.Stdout, "%s:%d: %s", path, tok.Line, tok.Kind)
			if tok.Kind == token.STRING || tok.Kind == token.NUMBER || tok.Kind == token.IDENT {
				fmt.Fprintf(stdio.Stdout, " %q", tok.Lexeme)
			}
			fmt.Fprintln(stdio.Stdout)
		}

		if tok.Kind == token.EOF {
			break
		}
		if tok.Kind == token.ILLEGAL {
			if asYAML {
				emitYAML(stdio, path, toks)
			}
			return &exitError{code: exitCompileError}
		}
	}

	if asYAML {
		emitYAML(stdio, path, toks)
	}
	return nil
}

func emitYAML(stdio mainer.Stdio, path string, toks []tokenYAML) {
	doc := struct {
		File   string      `yaml:"file"`
		Tokens []tokenYAML `yaml:"tokens"`
	}{File: path, Tokens: toks}

	b, err := yaml.Marshal(doc)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: marshaling tokens as yaml: %s\n", path, err)
		return
	}
	stdio.Stdout.Write(b)
}
