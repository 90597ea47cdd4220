package commands

import (
	"fmt"

	ferrors "git.home.luguber.info/inful/sitewrap/internal/foundation/errors"
)

// hint suggests the next step for failures the user can fix in the project tree.
func hint(err error) string {
	ce, ok := ferrors.AsClassified(err)
	if !ok {
		return ""
	}
	path, _ := ce.Context().GetString("path")
	switch {
	case ferrors.HasCode(err, ferrors.CodeMissingPublicDir) && path != "":
		return fmt.Sprintf("Hint: create the output directory first: mkdir %s", path)
	case ferrors.HasCode(err, ferrors.CodeMissingBaseTemplate) && path != "":
		return fmt.Sprintf("Hint: create %s with a %s placeholder", path, "{{ body }}")
	default:
		return ""
	}
}
