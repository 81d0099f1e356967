package utils

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/apex/log"
	"github.com/blacktop/simbio/internal/simctl"
	"golang.org/x/term"
)

// PickSimulator lets the user choose one of the booted simulators.
func PickSimulator(developerDir string) (*simctl.Device, error) {
	runtimes, err := simctl.List(developerDir)
	if err != nil {
		return nil, err
	}
	return pickSimulator(simctl.Booted(runtimes), term.IsTerminal(int(os.Stdin.Fd())))
}

func pickSimulator(booted []simctl.Device, interactive bool) (*simctl.Device, error) {
	switch {
	case len(booted) == 0:
		return nil, fmt.Errorf("no booted simulators found")
	case len(booted) == 1:
		log.Debugf("Using the only booted simulator: %s", booted[0].Name)
		return &booted[0], nil
	case !interactive:
		return nil, fmt.Errorf("%d booted simulators found and stdin is not a terminal (pass a SIMULATOR_UDID)", len(booted))
	}

	var choices []string
	for _, d := range booted {
		choices = append(choices, fmt.Sprintf("%s (%s) %s", d.Name, d.Runtime, d.UDID))
	}
	selected := 0
	prompt := &survey.Select{
		Message: "Select a booted simulator:",
		Options: choices,
	}
	if err := survey.AskOne(prompt, &selected); err == terminal.InterruptErr {
		log.Warn("Exiting...")
		os.Exit(0)
	} else if err != nil {
		return nil, err
	}

	return &booted[selected], nil
}
