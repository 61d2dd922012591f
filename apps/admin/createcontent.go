package main

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/content"
)

// createContent creates a course's content record; live content prints the
// generated passcode once.
func (cli *commandLine) createContent(courseID, typ, owner, scheduled string) error {
	nc := content.NewContent{
		CourseID: core.CleanString(courseID),
		Type:     content.Type(core.CleanString(typ, true /* lower */)),
		OwnerID:  core.CleanString(owner),
	}
	if scheduled != "" {
		t, err := time.Parse(time.RFC3339, scheduled)
		if err != nil {
			return fmt.Errorf("invalid -scheduled value %q: %v", scheduled, err)
		}
		nc.ScheduledAt = t
	}

	rec, passcode, err := cli.svc.Create(context.Background(), nc)
	if err != nil {
		return err
	}

	fmt.Printf("content created: course=%s type=%s\n", rec.CourseID, rec.Type)
	if rec.IsLive() {
		fmt.Printf("session: %s\npasscode: %s\n", rec.Live.SessionURL, passcode)
	}
	return nil
}
