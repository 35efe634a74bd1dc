package sentiment

// lexicon maps lowercase words to integer valences from -5 (most negative)
// to +5 (most positive), AFINN style. General-purpose entries plus the
// vocabulary that recurs in immigration coverage.
var lexicon = map[string]float64{
	// strongly negative
	"atrocity": -5, "catastrophe": -5, "horrific": -5, "terror": -5,
	"terrorism": -5, "terrorist": -5,
	"brutal": -4, "disaster": -4, "murder": -4, "murdered": -4,
	"nightmare": -4, "tortured": -4, "tragic": -4, "tragedy": -4,
	"violence": -4, "violent": -4,

	// negative
	"abandon": -3, "abandoned": -3, "abuse": -3, "abused": -3,
	"anger": -3, "angry": -3, "arrested": -3, "assault": -3,
	"attacked": -3, "chaos": -3, "crime": -3, "crimes": -3,
	"criminal": -3, "criminals": -3, "cruel": -3, "danger": -3,
	"dangerous": -3, "dead": -3, "death": -3, "deaths": -3,
	"desperate": -3, "died": -3, "exploited": -3, "fear": -3,
	"feared": -3, "frightened": -3, "hate": -3, "hatred": -3,
	"hostile": -3, "illegal": -3, "illegally": -3, "killed": -3,
	"panic": -3, "smuggling": -3, "threat": -3, "threats": -3,
	"trafficking": -3, "victim": -3, "victims": -3,

	"afraid": -2, "alarming": -2, "attack": -2, "attacks": -2,
	"blame": -2, "blamed": -2, "broke": -2, "broken": -2,
	"burden": -2, "collapse": -2, "crisis": -2, "criticized": -2,
	"crowded": -2, "denied": -2, "deported": -2, "deportation": -2,
	"detained": -2, "detention": -2, "failed": -2, "failure": -2,
	"flee": -2, "fleeing": -2, "fled": -2, "forced": -2,
	"fraud": -2, "homeless": -2, "hurt": -2, "invasion": -2,
	"jail": -2, "lost": -2, "poor": -2, "poverty": -2,
	"problem": -2, "problems": -2, "protest": -2, "protests": -2,
	"raid": -2, "raids": -2, "rejected": -2, "separated": -2,
	"separation": -2, "suffer": -2, "suffering": -2, "trouble": -2,
	"unsafe": -2, "worried": -2, "worry": -2, "wrong": -2,

	"anxious": -1, "concern": -1, "concerned": -1, "concerns": -1,
	"controversial": -1, "difficult": -1, "dispute": -1, "doubt": -1,
	"hard": -1, "strained": -1, "tension": -1, "unclear": -1,
	"undocumented": -1, "unrest": -1,

	// positive
	"able": 1, "agree": 1, "agreed": 1, "calm": 1, "capable": 1,
	"contribute": 1, "contributes": 1, "fair": 1, "grow": 1,
	"growing": 1, "growth": 1, "lawful": 1, "legal": 1,
	"legally": 1, "opportunity": 2, "opportunities": 2, "peaceful": 2,
	"productive": 2, "protect": 1, "protected": 1, "reform": 1,
	"reunited": 2, "safe": 1, "safety": 1, "secure": 1,
	"stability": 1, "stable": 1,

	"benefit": 2, "benefits": 2, "compassion": 2, "dignity": 2,
	"dream": 1, "freedom": 2, "help": 2, "helped": 2,
	"helping": 2, "hope": 2, "hopeful": 2, "improve": 2,
	"improved": 2, "progress": 2, "prosperity": 2, "relief": 2,
	"rescue": 2, "rescued": 2, "sanctuary": 2, "support": 2,
	"supported": 2, "supports": 2, "thrive": 2, "welcome": 2,
	"welcomed": 2, "welcoming": 2,

	"generous": 3, "grateful": 3, "kindness": 3, "succeed": 3,
	"success": 2, "successful": 3, "wonderful": 4,

	// amplifiers that carry their own valence
	"best": 3, "better": 2, "great": 3, "worse": -3, "worst": -3,
}
