package sentiment

// Valence lexicon for product-review vocabulary. Values follow the usual
// [-4,4] intensity scale; Score normalises the summed valence onto [-1,1].
var lexicon = map[string]float64{
	// positive
	"amazing": 2.8, "awesome": 3.1, "beautiful": 2.9, "best": 3.2,
	"better": 1.9, "brilliant": 2.8, "cheap": 0.6, "comfortable": 2.1,
	"convenient": 1.8, "correct": 1.6, "decent": 1.4, "delicious": 2.7,
	"durable": 2.0, "easy": 1.9, "enjoy": 2.2, "enjoyed": 2.2,
	"excellent": 3.2, "fantastic": 3.0, "fast": 1.7, "favorite": 2.6,
	"fine": 1.1, "flawless": 3.0, "fresh": 1.7, "friendly": 2.2,
	"good": 1.9, "great": 2.8, "happy": 2.6, "helpful": 2.1,
	"impressed": 2.4, "impressive": 2.5, "incredible": 2.9, "like": 1.5,
	"liked": 1.5, "love": 3.0, "loved": 2.9, "loves": 3.0,
	"nice": 1.8, "perfect": 3.1, "perfectly": 2.9, "pleasant": 2.0,
	"pleased": 2.2, "quality": 1.4, "quick": 1.5, "recommend": 2.3,
	"recommended": 2.2, "reliable": 2.1, "satisfied": 2.2, "smooth": 1.7,
	"solid": 1.6, "sturdy": 1.9, "stunning": 2.9, "superb": 3.0,
	"useful": 1.9, "value": 1.3, "wonderful": 3.0, "works": 1.4,
	"worth": 1.8,

	// negative
	"annoying": -2.1, "awful": -3.1, "bad": -2.5, "break": -1.8,
	"broke": -2.4, "broken": -2.6, "cheaply": -1.6, "crap": -2.8,
	"cracked": -2.2, "damaged": -2.3, "defective": -2.7, "died": -2.4,
	"dies": -2.2, "difficult": -1.6, "disappointed": -2.4,
	"disappointing": -2.5, "disappointment": -2.5, "dissatisfied": -2.4,
	"expensive": -1.2, "fail": -2.3, "failed": -2.4, "fails": -2.3,
	"faulty": -2.6, "flimsy": -2.0, "fraud": -3.0, "garbage": -2.9,
	"hate": -2.9, "hated": -2.8, "horrible": -3.0, "junk": -2.7,
	"leaked": -2.0, "mediocre": -1.4, "misleading": -2.2, "nasty": -2.5,
	"noisy": -1.5, "overpriced": -1.9, "poor": -2.3, "poorly": -2.1,
	"problem": -1.7, "problems": -1.8, "refund": -1.6, "regret": -2.3,
	"return": -1.3, "returned": -1.6, "returning": -1.5, "rude": -2.4,
	"scam": -3.2, "slow": -1.4, "stopped": -1.7, "terrible": -3.1,
	"trash": -2.8, "unacceptable": -2.6, "uncomfortable": -1.9,
	"unhappy": -2.3, "unreliable": -2.2, "unusable": -2.7, "useless": -2.6,
	"waste": -2.5, "worse": -2.1, "worst": -3.3, "wrong": -2.1,
}

// boosters scale the following sentiment word up or down.
var boosters = map[string]float64{
	"absolutely": 0.293, "completely": 0.293, "extremely": 0.293,
	"highly": 0.267, "incredibly": 0.293, "really": 0.241,
	"so": 0.241, "totally": 0.267, "truly": 0.241, "very": 0.293,
	"barely": -0.293, "hardly": -0.293, "kind": -0.267, "kinda": -0.267,
	"moderately": -0.241, "slightly": -0.293, "somewhat": -0.241,
}

// negators flip the following sentiment word.
var negators = map[string]bool{
	"aint": true, "cannot": true, "cant": true, "didnt": true,
	"doesnt": true, "dont": true, "isnt": true, "never": true,
	"no": true, "none": true, "not": true, "nothing": true,
	"wasnt": true, "wont": true, "wouldnt": true,
}
