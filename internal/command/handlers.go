package command

import (
	"fmt"
	"strings"

	"github.com/smileynet/addrbook/internal/contact"
)

// Messages shared by several handlers.
const (
	msgInvalidCommand = "Invalid command."
	msgNameOnly       = "Please provide name only."
	msgNoContacts     = "You have no contacts."
)

func notFound(name string) string {
	return fmt.Sprintf("No contact found under the name %s.", name)
}

func hello(_ *Env, _ []string) string {
	return "How can I help you?"
}

func goodbye(_ *Env, _ []string) string {
	return "Good bye!"
}

func addContact(env *Env, args []string) string {
	if len(args) != 2 {
		return "Error: Please provide both name and phone number."
	}
	name, phone := args[0], args[1]

	if r, ok := env.Book.Find(name); ok {
		if err := r.AddPhone(phone); err != nil {
			return err.Error()
		}
		return "Contact added."
	}

	r, err := contact.NewRecord(name)
	if err != nil {
		return err.Error()
	}
	// The record is only stored once its first phone is valid.
	if err := r.AddPhone(phone); err != nil {
		return err.Error()
	}
	env.Book.AddRecord(r)
	return "Contact added."
}

func changeContact(env *Env, args []string) string {
	if len(args) != 2 {
		return "Error: Please provide both name and new phone number."
	}
	name, phone := args[0], args[1]

	r, ok := env.Book.Find(name)
	if !ok {
		return notFound(name)
	}
	phones := r.Phones()
	if len(phones) == 0 {
		return "No existing phone number to replace."
	}
	if err := r.EditPhone(phones[0].String(), phone); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Contact %s's phone number has been changed to %s.", name, phone)
}

func showPhone(env *Env, args []string) string {
	if len(args) != 1 {
		return msgNameOnly
	}
	name := args[0]

	r, ok := env.Book.Find(name)
	if !ok {
		return notFound(name)
	}
	phones := r.Phones()
	if len(phones) == 0 {
		return fmt.Sprintf("No phone numbers found for %s.", name)
	}
	return fmt.Sprintf("%s's phone number is %s.", name, phones[0])
}

func showAll(env *Env, _ []string) string {
	if env.Book.Len() == 0 {
		return msgNoContacts
	}
	return env.Book.String()
}

func deleteContact(env *Env, args []string) string {
	if len(args) != 1 {
		return msgNameOnly
	}
	name := args[0]

	if !env.Book.Delete(name) {
		return notFound(name)
	}
	return fmt.Sprintf("%s was removed from your contacts.", name)
}

// addBirthday ignores arguments past the date.
func addBirthday(env *Env, args []string) string {
	if len(args) < 2 {
		return "Error: Please provide name and birthday (DD.MM.YYYY)."
	}
	name, date := args[0], args[1]

	r, ok := env.Book.Find(name)
	if !ok {
		return notFound(name)
	}
	if err := r.AddBirthday(date); err != nil {
		return err.Error()
	}
	return "Birthday added."
}

// showBirthday ignores arguments past the name.
func showBirthday(env *Env, args []string) string {
	if len(args) < 1 {
		return "Enter contact name."
	}
	name := args[0]

	r, ok := env.Book.Find(name)
	if !ok {
		return notFound(name)
	}
	bd, ok := r.Birthday()
	if !ok {
		return fmt.Sprintf("No birthday set for %s.", name)
	}
	return fmt.Sprintf("%s's birthday is %s.", name, bd)
}

func upcomingBirthdays(env *Env, _ []string) string {
	upcoming := env.Book.UpcomingBirthdays(env.now(), env.Window)
	return FormatUpcoming(upcoming, env.Window)
}

// FormatUpcoming renders an upcoming-birthday list, one contact per line.
func FormatUpcoming(upcoming []contact.UpcomingBirthday, window int) string {
	if len(upcoming) == 0 {
		return fmt.Sprintf("No birthdays in the next %d days.", window)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Birthdays in the next %d days:", window)
	for _, u := range upcoming {
		fmt.Fprintf(&b, "\n  %s: %s (%s)", u.Name, u.Date.Format(contact.BirthdayLayout), u.Date.Weekday())
	}
	return b.String()
}
