package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blockhost/rootagent/internal/action"
	"github.com/blockhost/rootagent/internal/term"
)

// errTerminalInput is returned when a request would be read from a tty.
var errTerminalInput = errors.New("refusing to read a request from a terminal; pipe JSON on stdin or use --request")

// readRequest returns the request given by --request, or reads one from
// the command's stdin. At most limit bytes are accepted.
func readRequest(cmd *cobra.Command, inline string, limit int) (action.Request, error) {
	data := []byte(inline)
	if inline == "" {
		in := cmd.InOrStdin()
		if f, ok := in.(*os.File); ok && term.IsTerminal(f) {
			return action.Request{}, errTerminalInput
		}
		var err error
		data, err = io.ReadAll(io.LimitReader(in, int64(limit)+1))
		if err != nil {
			return action.Request{}, fmt.Errorf("failed to read request: %w", err)
		}
	}
	if len(data) > limit {
		return action.Request{}, fmt.Errorf("request exceeds %d bytes", limit)
	}
	return action.ParseRequest(data)
}
