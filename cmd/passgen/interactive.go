package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hpungsan/passgen/internal/config"
	"github.com/hpungsan/passgen/internal/generator"
	"github.com/hpungsan/passgen/internal/record"
	"github.com/hpungsan/passgen/internal/store"
	"github.com/hpungsan/passgen/internal/strength"
)

// session is one run of the interactive menu. End of input ends the session
// without an error.
type session struct {
	in       *bufio.Scanner
	out      io.Writer
	store    *store.Store
	cfg      *config.Config
	generate func(generator.Options) (string, error)
}

func newSession(in io.Reader, out io.Writer, s *store.Store, cfg *config.Config, generate func(generator.Options) (string, error)) *session {
	return &session{
		in:       bufio.NewScanner(in),
		out:      out,
		store:    s,
		cfg:      cfg,
		generate: generate,
	}
}

// prompt prints label and reads one trimmed line. ok is false at end of input.
func (s *session) prompt(label string) (string, bool) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		fmt.Fprintln(s.out)
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}

// yes reads a y/n answer; an empty answer yields def.
func (s *session) yes(label string, def bool) (bool, bool) {
	answer, ok := s.prompt(label)
	if !ok {
		return false, false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return def, true
}

func (s *session) run() error {
	fmt.Fprintln(s.out, "Interactive Password Generator")
	fmt.Fprintln(s.out, strings.Repeat("=", 40))

	for {
		fmt.Fprintln(s.out, "\nOptions:")
		fmt.Fprintln(s.out, "1. Generate password")
		fmt.Fprintln(s.out, "2. List saved passwords")
		fmt.Fprintln(s.out, "3. Clear saved passwords")
		fmt.Fprintln(s.out, "4. Exit")

		choice, ok := s.prompt("\nEnter your choice (1-4): ")
		if !ok {
			return s.in.Err()
		}

		switch choice {
		case "1":
			if !s.generateOnce() {
				return s.in.Err()
			}
		case "2":
			printRecords(s.out, s.store.Records())
		case "3":
			confirm, ok := s.yes("Are you sure? (y/N): ", false)
			if !ok {
				return s.in.Err()
			}
			if confirm {
				if err := clearSaved(s.out, s.store); err != nil {
					fmt.Fprintf(s.out, "Error: %s\n", errMessage(err))
				}
			}
		case "4":
			fmt.Fprintln(s.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please try again.")
		}
	}
}

// generateOnce walks through the generation prompts. It returns false at end of input.
func (s *session) generateOnce() bool {
	fmt.Fprintln(s.out, "\nPassword Generation Options:")

	length, ok := s.readLength()
	if !ok {
		return false
	}

	opts := generator.Options{Length: length}

	fmt.Fprintln(s.out, "\nCharacter types (y/n):")
	classes := []struct {
		label string
		dst   *bool
	}{
		{"Uppercase letters (A-Z)? (Y/n): ", &opts.Uppercase},
		{"Lowercase letters (a-z)? (Y/n): ", &opts.Lowercase},
		{"Numbers (0-9)? (Y/n): ", &opts.Numbers},
		{"Symbols (!@#$%^&*)? (Y/n): ", &opts.Symbols},
	}
	for _, c := range classes {
		if *c.dst, ok = s.yes(c.label, true); !ok {
			return false
		}
	}

	fmt.Fprintln(s.out, "\nExclusion options (y/n):")
	if opts.ExcludeSimilar, ok = s.yes("Exclude similar characters (l, 1, I, O, 0)? (y/N): ", false); !ok {
		return false
	}
	if opts.ExcludeAmbiguous, ok = s.yes("Exclude ambiguous characters ({}, [], (), /, \\, |, `, ~)? (y/N): ", false); !ok {
		return false
	}

	pw, err := s.generate(opts)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %s\n", errMessage(err))
		return true
	}

	fmt.Fprintln(s.out)
	printGenerated(s.out, pw, strength.Evaluate(pw), record.CountChars(pw))

	save, ok := s.yes("\nSave this password? (y/N): ", false)
	if !ok {
		return false
	}
	if !save {
		return true
	}

	description, ok := s.prompt("Description (optional): ")
	if !ok {
		return false
	}
	if _, err := s.store.Append(pw, description); err != nil {
		fmt.Fprintf(s.out, "Error: %s\n", errMessage(err))
		return true
	}
	fmt.Fprintln(s.out, "Password saved successfully!")
	return true
}

// readLength prompts until a length within the configured bounds is entered.
func (s *session) readLength() (int, bool) {
	label := fmt.Sprintf("Password length (%d-%d, default %d): ", s.cfg.MinLength, s.cfg.MaxLength, s.cfg.DefaultLength)
	for {
		answer, ok := s.prompt(label)
		if !ok {
			return 0, false
		}
		if answer == "" {
			return s.cfg.DefaultLength, true
		}

		n, err := strconv.Atoi(answer)
		if err != nil {
			fmt.Fprintln(s.out, "Please enter a valid number.")
			continue
		}
		if checkLength(s.cfg, n) != nil {
			fmt.Fprintf(s.out, "Length must be between %d and %d.\n", s.cfg.MinLength, s.cfg.MaxLength)
			continue
		}
		return n, true
	}
}
