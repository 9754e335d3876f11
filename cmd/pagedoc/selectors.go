package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/pagedoc"
)

// Run executes the "selectors show" command.
func (c *SelectorsShowCmd) Run(deps *Dependencies) error {
	cached, err := deps.Selectors.Get(deps.Ctx, c.Domain)
	if err != nil {
		if pagedoc.ErrorCode(err) == pagedoc.ENOTFOUND {
			fmt.Fprintf(deps.Stdout, "No cached selectors for %s\n", c.Domain)
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedoc.ErrorMessage(err))
		return err
	}

	encoded, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, string(encoded))
	return nil
}

// Run executes the "selectors clear" command.
func (c *SelectorsClearCmd) Run(deps *Dependencies) error {
	if err := deps.Selectors.Invalidate(deps.Ctx, c.Domain); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", pagedoc.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Cleared cached selectors for %s\n", c.Domain)
	return nil
}
