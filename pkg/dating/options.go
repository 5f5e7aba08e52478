package dating

// Mode selects the persona used for free-form chat.
type Mode string

const (
	ModeBasic  Mode = "basic"
	ModeExpert Mode = "expert"
	ModeAlpha  Mode = "alpha"
)

// Tone of a generated profile description.
type Tone string

const (
	ToneFriendly     Tone = "friendly"
	ToneConfident    Tone = "confident"
	ToneMysterious   Tone = "mysterious"
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
)

// Length of a generated profile description.
type Length string

const (
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Focus of a generated profile description.
type Focus string

const (
	FocusPersonality Focus = "personality"
	FocusInterests   Focus = "interests"
	FocusGoals       Focus = "goals"
	FocusBalanced    Focus = "balanced"
)

// Humor level of a generated profile description.
type Humor string

const (
	HumorMinimal  Humor = "minimal"
	HumorModerate Humor = "moderate"
	HumorHigh     Humor = "high"
)

// Intention is what the user wants out of a match conversation.
type Intention string

const (
	IntentionDate       Intention = "date"
	IntentionCasual     Intention = "casual"
	IntentionSerious    Intention = "serious"
	IntentionHookup     Intention = "hookup"
	IntentionFriendship Intention = "friendship"
)

// Style of suggested replies.
type Style string

const (
	StyleFlirty       Style = "flirty"
	StyleFunny        Style = "funny"
	StyleConfident    Style = "confident"
	StyleMysterious   Style = "mysterious"
	StyleIntellectual Style = "intellectual"
	StyleCasual       Style = "casual"
)

// Choice is a selectable option value with its human label.
type Choice[T ~string] struct {
	Value T
	Label string
}

var (
	Modes = []Choice[Mode]{
		{ModeBasic, "Basic"},
		{ModeExpert, "Expert (dating coach)"},
		{ModeAlpha, "α - v0.1"},
	}

	Tones = []Choice[Tone]{
		{ToneFriendly, "Friendly & Approachable"},
		{ToneConfident, "Confident & Bold"},
		{ToneMysterious, "Mysterious & Intriguing"},
		{ToneProfessional, "Professional & Polished"},
		{ToneCasual, "Casual & Relaxed"},
	}

	Lengths = []Choice[Length]{
		{LengthShort, "Short (50-75 words)"},
		{LengthMedium, "Medium (75-150 words)"},
		{LengthLong, "Long (150-200 words)"},
	}

	Focuses = []Choice[Focus]{
		{FocusPersonality, "Personality & Character"},
		{FocusInterests, "Hobbies & Interests"},
		{FocusGoals, "Goals & Ambitions"},
		{FocusBalanced, "Balanced Approach"},
	}

	HumorLevels = []Choice[Humor]{
		{HumorMinimal, "Minimal"},
		{HumorModerate, "Moderate"},
		{HumorHigh, "Lots of Humor"},
	}

	Intentions = []Choice[Intention]{
		{IntentionDate, "Secure a Date"},
		{IntentionCasual, "Keep it Casual"},
		{IntentionSerious, "Build a Relationship"},
		{IntentionHookup, "Quick Hookup"},
		{IntentionFriendship, "Just Friendship"},
	}

	Styles = []Choice[Style]{
		{StyleFlirty, "Flirty & Playful"},
		{StyleFunny, "Humorous"},
		{StyleConfident, "Confident & Direct"},
		{StyleMysterious, "Mysterious & Intriguing"},
		{StyleIntellectual, "Intellectual & Deep"},
		{StyleCasual, "Casual & Relaxed"},
	}
)

// DefaultBioOptions matches the preselected choices of the profile editor.
func DefaultBioOptions() BioOptions {
	return BioOptions{
		Tone:   ToneFriendly,
		Length: LengthMedium,
		Focus:  FocusPersonality,
		Humor:  HumorModerate,
	}
}

// WithDefaults fills every empty option from DefaultBioOptions.
func (o BioOptions) WithDefaults() BioOptions {
	d := DefaultBioOptions()
	if o.Tone == "" {
		o.Tone = d.Tone
	}
	if o.Length == "" {
		o.Length = d.Length
	}
	if o.Focus == "" {
		o.Focus = d.Focus
	}
	if o.Humor == "" {
		o.Humor = d.Humor
	}
	return o
}

// Label returns the human label of v, or v itself when it is not a choice.
func Label[T ~string](choices []Choice[T], v T) string {
	for _, c := range choices {
		if c.Value == v {
			return c.Label
		}
	}
	return string(v)
}

// Values returns the raw values of choices.
func Values[T ~string](choices []Choice[T]) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = string(c.Value)
	}
	return out
}

func isChoice[T ~string](choices []Choice[T], v T) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// wordRange returns the target word count range for l.
func (l Length) wordRange() (int, int) {
	switch l {
	case LengthShort:
		return 50, 75
	case LengthLong:
		return 150, 200
	default:
		return 75, 150
	}
}
