package risk

import "strings"

// Tier is the coarse classification produced by the keyword catalog.
type Tier string

const (
	TierNone    Tier = "none"
	TierWarning Tier = "warning"
	TierDanger  Tier = "danger"
)

// Keyword tiers. Matching is deliberately substring-based with no word
// boundaries ("scared" matches inside "scaredycat"): on a safety system a
// false positive is cheaper than a miss.
var (
	dangerKeywords = []string{
		// Suicidal ideation
		"suicide", "kill myself", "end it all", "want to die", "better off dead",
		"no point living", "take my life", "end my life", "can't go on",
		"worthless", "hopeless", "nothing matters",
		// Self-harm
		"cut myself", "hurt myself", "self-harm", "razor", "blade", "pills",
		"overdose", "jump", "hanging", "rope", "gun", "poison",
		// Severe depression
		"completely broken", "destroyed", "shattered", "can't breathe",
		"suffocating", "drowning", "trapped", "prison", "hell", "torture",
		"agony", "unbearable pain",
		// Crisis indicators
		"emergency", "crisis", "breakdown", "losing control", "going crazy",
		"insane", "psychotic", "hallucinating", "voices", "paranoid",
		"terrified", "panic attack",
		// Disease-related despair
		"terminal", "dying", "incurable", "cancer", "tumor", "chemotherapy",
		"radiation", "hospice", "palliative", "final stage", "months to live",
		"weeks to live",
		// Heartbreak extreme
		"heart destroyed", "soul crushed", "life ruined", "can't live without",
		"nothing left", "empty inside", "dead inside", "zombie", "ghost",
		"shadow of myself",
	}

	warningKeywords = []string{
		// Moderate depression
		"sad", "depressed", "down", "blue", "melancholy", "gloomy", "miserable",
		"unhappy", "dejected", "despondent", "discouraged", "disheartened",
		// Anxiety
		"anxious", "worried", "nervous", "scared", "afraid", "fearful",
		"panicked", "stressed", "overwhelmed", "tense", "restless", "uneasy",
		"apprehensive",
		// Anger
		"angry", "mad", "furious", "rage", "irritated", "annoyed", "frustrated",
		"hostile", "aggressive", "bitter", "resentful", "livid", "enraged",
		// Physical symptoms
		"tired", "exhausted", "drained", "weak", "sick", "nauseous", "dizzy",
		"headache", "pain", "aching", "sore", "uncomfortable", "unwell",
		// Emotional distress
		"crying", "tears", "sobbing", "weeping", "heartbroken", "devastated",
		"crushed", "hurt", "wounded", "betrayed", "abandoned", "rejected",
		// Isolation
		"alone", "lonely", "isolated", "disconnected", "withdrawn", "distant",
		"antisocial", "hermit", "recluse", "shut out", "excluded", "ignored",
		// Relationship issues
		"breakup", "divorce", "separation", "cheated", "unfaithful", "betrayal",
		"argument", "fight", "conflict", "tension", "problems", "issues",
		// Work/life stress
		"pressure", "deadline", "overworked", "burnout", "struggling",
		"difficult", "challenging", "demanding", "overwhelming", "burden",
		"responsibility",
	}

	safeKeywords = []string{
		// Positive emotions
		"happy", "joyful", "cheerful", "delighted", "pleased", "content",
		"satisfied", "glad", "elated", "ecstatic", "thrilled", "excited",
		"enthusiastic",
		// Peace and calm
		"calm", "peaceful", "serene", "tranquil", "relaxed", "comfortable",
		"at ease", "centered", "balanced", "stable", "grounded", "secure", "safe",
		// Love and connection
		"loved", "cherished", "appreciated", "valued", "supported", "cared for",
		"connected", "close", "bonded", "intimate", "affectionate", "warm",
		// Confidence and strength
		"confident", "strong", "powerful", "capable", "competent", "skilled",
		"accomplished", "successful", "proud", "determined", "motivated",
		// Gratitude and appreciation
		"grateful", "thankful", "blessed", "fortunate", "lucky", "appreciative",
		"mindful", "present", "aware", "conscious", "enlightened",
		// Energy and vitality
		"energetic", "vibrant", "alive", "refreshed", "renewed", "revitalized",
		"healthy", "fit", "active", "dynamic", "vigorous",
		// Hope and optimism
		"hopeful", "optimistic", "positive", "bright", "promising",
		"encouraging", "uplifting", "inspiring", "motivating", "empowering",
		"healing",
		// Achievement and growth
		"achieved", "progressed", "improved", "developed", "learned", "grown",
		"evolved", "transformed", "breakthrough", "success", "victory",
	}
)

// Catalog returns the static tier -> keyword mapping, mainly for display.
func Catalog() map[Tier][]string {
	return map[Tier][]string{
		TierDanger:  dangerKeywords,
		TierWarning: warningKeywords,
		TierNone:    safeKeywords,
	}
}

// ClassifyKeywords lower-cases and joins the tagged keywords into one search
// string and returns the first matching tier, danger checked before warning.
func ClassifyKeywords(keywords []string) Tier {
	haystack := strings.ToLower(strings.Join(keywords, " "))
	for _, w := range dangerKeywords {
		if strings.Contains(haystack, w) {
			return TierDanger
		}
	}
	for _, w := range warningKeywords {
		if strings.Contains(haystack, w) {
			return TierWarning
		}
	}
	return TierNone
}
