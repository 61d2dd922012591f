package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) resetPasscode(courseID string) error {
	passcode, err := cli.svc.ResetPasscode(context.Background(), courseID)
	if err != nil {
		return err
	}
	fmt.Printf("new passcode: %s\n", passcode)
	return nil
}

func (cli *commandLine) checkPasscode(courseID, passcode string) error {
	if err := cli.svc.CheckPasscode(context.Background(), courseID, passcode); err != nil {
		return err
	}
	fmt.Println("passcode accepted")
	return nil
}
