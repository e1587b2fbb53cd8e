package story

// Default returns the built-in deck: six photo slides and the finale.
func Default() Deck {
	return MustDeck(defaultSlides)
}

var defaultSlides = []Slide{
	{
		ID:      1,
		Key:     "The Spark",
		Variant: VariantImage,
		Image:   "/images/IMG-20250115-WA0016.jpg",
		Lines: []string{
			"It all started with a weird,\nnewspaper-print umbrella.",
			"One random question.",
			"“Eta ki chaata?”",
			"I didn’t know that silly moment\nwould become the beginning\nof my favorite story.",
			"Since 2018,\nyou’ve been my best chapter.",
		},
		AudioKeyword: "sparkle",
		Song:         "Sparkle Radwimps.mp3",
	},
	{
		ID:      2,
		Key:     "The Compass",
		Variant: VariantImage,
		Image:   "/images/IMG-20250115-WA0024.jpg",
		Lines: []string{
			"12th December, 2018.",
			"We’ve had our on and offs.",
			"Silence.",
			"Distance.",
			"Moments that could’ve ended us.",
			"But somehow,\nevery single time,\nwe found our way back.",
			"Not because it was easy.",
			"But because it felt right.",
			"It’s either you.\nOr it’s no one.",
		},
		AudioKeyword: "compass",
		Song:         "Until I Found You Stephen Sanchez.mp3",
	},
	{
		ID:      3,
		Key:     "The Mirrorball",
		Variant: VariantImage,
		Image:   "/images/IMG-20250128-WA0025.jpg",
		Lines: []string{
			"I know what you tell yourself.",
			"That you’re the strong one.",
			"The responsible one.",
			"The one who carries too much.",
			"The one who makes sure\nnobody ever feels left out…",
			"But somehow,\nyou’re the one\nwho feels forgotten.",
			"You are not the backup.",
			"You are not too much.",
			"You are not second.",
			"You are everything to me.",
		},
		AudioKeyword: "mirrorball",
		Song:         "Die With A Smile Bruno Mars.mp3",
	},
	{
		ID:      4,
		Key:     "The Sanctuary",
		Variant: VariantImage,
		Image:   "/images/IMG-20250203-WA0035.jpg",
		Lines: []string{
			"I know about the panic.",
			"The sleepless nights.",
			"The quiet breakdowns.",
			"The days you whisper,\n‘I am not okay.\nI’m really not okay.’",
			"You don’t have to be strong\nevery second with me.",
			"In your chaos.",
			"In your calm.",
			"In your silence.",
			"I am here.\nAnd I’m not leaving.",
		},
		AudioKeyword: "sanctuary",
		Song:         "yung kai - blue.mp3",
	},
	{
		ID:      5,
		Key:     "The Promise",
		Variant: VariantImage,
		Image:   "/images/IMG-20250203-WA0099.jpg",
		Lines: []string{
			"I know I’m not perfect.",
			"I can be too logical\nwhen you need softness.",
			"I understand things,\nbut sometimes delay action.",
			"I stretch myself thin\ntrying to save everyone.",
			"But loving you\nis teaching me growth.",
			"I will work on my boundaries.",
			"I will listen deeper.",
			"I will act sooner.",
			"I will protect our space.",
			"And yes…\nI’ve only come once.",
			"But that story?\nIt’s about to change.",
		},
		AudioKeyword: "promise",
		Song:         "Light Switch Charlie Puth.mp3",
	},
	{
		ID:      6,
		Key:     "The Forever",
		Variant: VariantImage,
		Image:   "/images/IMG-20250203-WA0107.jpg",
		Lines: []string{
			"One day,\nwe’ll count grey hairs.",
			"Complain about back pain.",
			"Laugh at our old photos.",
			"And I’ll still look at you\nlike I did in 2018.",
			"Because beauty was never\njust your face.",
			"It was always your heart.",
			"And that never fades.",
		},
		AudioKeyword: "forever",
		Song:         "her JVKE.mp3",
	},
	{
		ID:      7,
		Key:     "The Grand Finale",
		Variant: VariantFinale,
		Image:   "/images/IMG-20250203-WA0115.jpg",
		Lines: []string{
			"After 2,616 days.",
			"After distance.",
			"After growth.",
			"After everything.",
			"Arpita…",
			"Will you be my Valentine\nfor ever and ever?",
		},
		AudioKeyword: "finale",
		Song:         "I Think They Call This Love.mp3",
	},
}
