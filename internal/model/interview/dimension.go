package interview

// Dimension identifies one of the twelve fixed assessment areas. The set is
// closed: handlers and profiles are keyed by these values and nothing may add
// or remove one at runtime.
type Dimension string

const (
	Personality           Dimension = "personality"
	Interests             Dimension = "interests"
	Aspirations           Dimension = "aspirations"
	Skills                Dimension = "skills"
	MotivationsValues     Dimension = "motivations_values"
	CognitiveAbilities    Dimension = "cognitive_abilities"
	LearningPreferences   Dimension = "learning_preferences"
	PhysicalContext       Dimension = "physical_context"
	StrengthsWeaknesses   Dimension = "strengths_weaknesses"
	EmotionalIntelligence Dimension = "emotional_intelligence"
	TrackRecord           Dimension = "track_record"
	Constraints           Dimension = "constraints"
)

// allDimensions is the canonical interview order.
var allDimensions = []Dimension{
	Personality,
	Interests,
	Aspirations,
	Skills,
	MotivationsValues,
	CognitiveAbilities,
	LearningPreferences,
	PhysicalContext,
	StrengthsWeaknesses,
	EmotionalIntelligence,
	TrackRecord,
	Constraints,
}

var dimensionTitles = map[Dimension]string{
	Personality:           "Personality",
	Interests:             "Interests",
	Aspirations:           "Aspirations",
	Skills:                "Skills",
	MotivationsValues:     "Motivations & Values",
	CognitiveAbilities:    "Cognitive Abilities",
	LearningPreferences:   "Learning Preferences",
	PhysicalContext:       "Physical Context",
	StrengthsWeaknesses:   "Strengths & Weaknesses",
	EmotionalIntelligence: "Emotional Intelligence",
	TrackRecord:           "Track Record",
	Constraints:           "Constraints",
}

// AllDimensions returns the twelve dimensions in canonical interview order.
func AllDimensions() []Dimension {
	return append([]Dimension(nil), allDimensions...)
}

// Valid reports whether d is one of the twelve known dimensions.
func (d Dimension) Valid() bool {
	_, ok := dimensionTitles[d]
	return ok
}

// Title returns the human-readable label for d, or the raw value if unknown.
func (d Dimension) Title() string {
	if title, ok := dimensionTitles[d]; ok {
		return title
	}
	return string(d)
}

// ParseDimension normalises a raw identifier into a Dimension.
func ParseDimension(raw string) (Dimension, bool) {
	d := Dimension(raw)
	return d, d.Valid()
}
