// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/oncology-cdss/pkg/types"
)

// Console asks a reviewer at a terminal for a decision. The policy outcome
// of Gate is shown and used when the reviewer enters nothing.
type Console struct {
	In   io.Reader
	Out  io.Writer
	Name string

	// Now stamps the review. Defaults to time.Now.
	Now func() time.Time
}

// Review prompts for approve or modify, then for a comment on modify.
// Unrecognized answers are asked again.
func (c *Console) Review(ctx context.Context, req Request) (types.ReviewDecision, error) {
	suggested, suggestedComment := Gate(req)
	r := bufio.NewReader(c.In)

	fmt.Fprintln(c.Out, "Physician review required")
	fmt.Fprintf(c.Out, "  Recommendation: %s\n", req.Recommendation)
	fmt.Fprintf(c.Out, "  Confidence:     %.3f\n", req.Confidence)
	fmt.Fprintf(c.Out, "  p-value:        %.4f\n", req.PValue)
	fmt.Fprintf(c.Out, "  Policy:         %s (%s)\n", suggested, suggestedComment)

	var decision types.Decision
	for decision == "" {
		if err := ctx.Err(); err != nil {
			return types.ReviewDecision{}, err
		}
		fmt.Fprintf(c.Out, "Decision [approve/modify] (default %s): ", suggested)
		line, err := readLine(r)
		if err != nil {
			return types.ReviewDecision{}, fmt.Errorf("reading decision: %w", err)
		}
		switch strings.ToLower(line) {
		case "":
			decision = suggested
		case "approve", "a":
			decision = types.DecisionApprove
		case "modify", "m":
			decision = types.DecisionModify
		default:
			fmt.Fprintf(c.Out, "unrecognized decision %q\n", line)
		}
	}

	comment := CommentApprove
	if decision == types.DecisionModify {
		if suggested == types.DecisionModify {
			comment = suggestedComment
		} else {
			comment = CommentWeakEvidence
		}
		fmt.Fprintf(c.Out, "Comment (default %q): ", comment)
		line, err := readLine(r)
		if err != nil {
			return types.ReviewDecision{}, fmt.Errorf("reading comment: %w", err)
		}
		if line != "" {
			comment = line
		}
	}

	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	name := c.Name
	if name == "" {
		name = "Reviewing physician"
	}
	return Decide(req, decision, comment, name, now().Format(TimestampLayout)), nil
}

// readLine returns the next trimmed line. A final line without a newline
// is accepted; EOF with no input is an error.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
