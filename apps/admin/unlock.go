package main

import (
	"context"
	"fmt"

	"github.com/trezcool/darasa/core"
)

// unlock opens up all chapters of a course, as if an enrollment came in.
func (cli *commandLine) unlock(courseID, email string) error {
	email = core.CleanString(email, true /* lower */)
	if err := cli.svc.HandleEnrollment(context.Background(), courseID, email); err != nil {
		return err
	}
	fmt.Printf("all chapters of course %s unlocked\n", courseID)
	return nil
}
