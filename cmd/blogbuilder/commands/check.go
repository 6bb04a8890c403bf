package commands

import (
	"fmt"

	derrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Strict bool `help:"Treat warnings as failures"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root)
	if err != nil {
		return err
	}

	problems, err := site.Check(g.context(), cfg)
	if err != nil {
		return err
	}
	for _, p := range problems {
		_, _ = fmt.Fprintln(g.out(), p.String())
	}

	failed := site.HasErrors(problems) || (c.Strict && len(problems) > 0)
	if failed {
		return derrors.New(derrors.CategoryContent, derrors.SeverityError, "content check failed").
			WithContext("problems", len(problems))
	}
	_, _ = fmt.Fprintf(g.out(), "checked %s: %d warning(s)\n", cfg.ContentPath(), len(problems))
	return nil
}
