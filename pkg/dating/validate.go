package dating

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

const (
	MinAge            = 18
	MaxAge            = 100
	MinPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidationError lists field-level problems with a request. Error() joins
// them in a stable order so it can be shown to users as is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

type validator map[string]string

func (v validator) check(ok bool, field, msg string) {
	if !ok {
		if _, seen := v[field]; !seen {
			v[field] = msg
		}
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}

func (v validator) profile(name, email, sex string, age int) {
	v.check(strings.TrimSpace(name) != "", "name", "Name is required")
	v.check(strings.TrimSpace(email) != "", "email", "Email is required")
	v.check(strings.TrimSpace(email) == "" || emailPattern.MatchString(email), "email", "Email is invalid")
	v.check(strings.TrimSpace(sex) != "", "sex", "Sex is required")
	v.check(age >= MinAge && age <= MaxAge, "age", fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge))
}

// Validate checks a registration.
func (r Registration) Validate() error {
	v := validator{}
	v.profile(r.Name, r.Email, r.Sex, r.Age)
	v.check(len(r.Password) >= MinPasswordLength, "password",
		fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	return v.err()
}

// Validate checks a login attempt.
func (c Credentials) Validate() error {
	v := validator{}
	v.check(strings.TrimSpace(c.Email) != "" && c.Password != "", "credentials", "Email and password are required")
	return v.err()
}

// Validate checks a profile update.
func (p ProfileUpdate) Validate() error {
	v := validator{}
	v.check(p.UserID > 0, "user_id", "User ID is required")
	v.profile(p.Name, p.Email, p.Sex, p.Age)
	v.check(p.Password == "" || len(p.Password) >= MinPasswordLength, "password",
		fmt.Sprintf("Password must be at least %d characters", MinPasswordLength))
	return v.err()
}

// Validate checks a generation request.
func (g GenerateRequest) Validate() error {
	v := validator{}
	v.check(strings.TrimSpace(g.Prompt) != "", "prompt", "Prompt is required")
	v.check(g.Mode == "" || isChoice(Modes, g.Mode), "mode",
		fmt.Sprintf("Mode must be one of %s", strings.Join(Values(Modes), ", ")))
	return v.err()
}

// Validate checks a new chat window.
func (n NewChatWindow) Validate() error {
	v := validator{}
	v.check(n.UserID > 0, "user_id", "User ID is required")
	v.check(n.Mode == "" || isChoice(Modes, n.Mode), "mode",
		fmt.Sprintf("Mode must be one of %s", strings.Join(Values(Modes), ", ")))
	return v.err()
}

// Validate checks the description options.
func (o BioOptions) Validate() error {
	v := validator{}
	o.validate(v)
	return v.err()
}

func (o BioOptions) validate(v validator) {
	v.check(isChoice(Tones, o.Tone), "tone", fmt.Sprintf("Tone must be one of %s", strings.Join(Values(Tones), ", ")))
	v.check(isChoice(Lengths, o.Length), "length", fmt.Sprintf("Length must be one of %s", strings.Join(Values(Lengths), ", ")))
	v.check(isChoice(Focuses, o.Focus), "focus", fmt.Sprintf("Focus must be one of %s", strings.Join(Values(Focuses), ", ")))
	v.check(isChoice(HumorLevels, o.Humor), "humor", fmt.Sprintf("Humor must be one of %s", strings.Join(Values(HumorLevels), ", ")))
}

// Validate checks a description request. Age and occupation are required.
func (b BioRequest) Validate() error {
	v := validator{}
	v.check(b.UserID > 0, "user_id", "User ID is required")
	v.check(b.Basics.Age > 0 && strings.TrimSpace(b.Basics.Occupation) != "", "basics",
		"Please fill in at least your age and occupation")
	v.check(b.Basics.Age == 0 || (b.Basics.Age >= MinAge && b.Basics.Age <= MaxAge), "age",
		fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge))
	b.Options.validate(v)
	return v.err()
}

// Validate checks a description refinement request.
func (b BioRefineRequest) Validate() error {
	v := validator{}
	v.check(b.UserID > 0, "user_id", "User ID is required")
	v.check(strings.TrimSpace(b.Description) != "", "description", "Description is required")
	b.Options.validate(v)
	return v.err()
}

// Validate checks a reply request.
func (r ReplyRequest) Validate() error {
	v := validator{}
	v.check(r.UserID > 0, "user_id", "User ID is required")
	v.check(strings.TrimSpace(r.Message) != "", "message", "Message is required")
	v.check(isChoice(Intentions, r.Intention), "intention",
		fmt.Sprintf("Intention must be one of %s", strings.Join(Values(Intentions), ", ")))
	v.check(isChoice(Styles, r.Style), "style",
		fmt.Sprintf("Style must be one of %s", strings.Join(Values(Styles), ", ")))
	return v.err()
}

// Validate checks a love calculator request.
func (l LoveRequest) Validate() error {
	v := validator{}
	v.check(strings.TrimSpace(l.Name1) != "" && strings.TrimSpace(l.Name2) != "", "names", "Both names are required")
	return v.err()
}
