package seedposts

// The scripted corpus covers both projects, all five authors, and every
// final label at least twice so a fresh deployment ends up with leaderboards
// that have defensible ordering.

var seedProjects = []ProjectSeed{
	{
		Name:           "Polymarket",
		Slug:           "polymarket",
		ContextSummary: "Polymarket is a decentralized information markets platform built on Ethereum.",
	},
	{
		Name:           "Kaito",
		Slug:           "kaito",
		ContextSummary: "Kaito is an AI-powered information platform on Base chain.",
	},
}

var seedAuthors = []AuthorSeed{
	{Handle: "@user1", Wallet: "0x11111111111111111111111111111111111111111"},
	{Handle: "@user2", Wallet: "0x11111111111111111111111111111111111111112"},
	{Handle: "@user3", Wallet: "0x11111111111111111111111111111111111111113"},
	{Handle: "@user4", Wallet: "0x11111111111111111111111111111111111111114"},
	{Handle: "@user5", Wallet: "0x11111111111111111111111111111111111111115"},
}

var seedPosts = []PostSeed{
	{
		ProjectSlug:   "polymarket",
		Author:        seedAuthors[0],
		Content:       "Polymarket is revolutionizing prediction markets with decentralized technology. The platform enables users to bet on real-world events with transparency and security.",
		Tags:          []string{"prediction-markets", "analysis"},
		ExpectedLabel: "good",
	},
	{
		ProjectSlug:   "polymarket",
		Author:        seedAuthors[1],
		Content:       "Just bought some tokens! 🚀🚀🚀 To the moon!!!",
		Tags:          []string{"hype"},
		ExpectedLabel: "shitposting",
	},
	{
		ProjectSlug:   "kaito",
		Author:        seedAuthors[2],
		Content:       "Kaito's AI technology shows promise, but we need to see more real-world applications before making a final judgment.",
		Tags:          []string{"ai"},
		ExpectedLabel: "borderline",
	},
	{
		ProjectSlug:   "polymarket",
		Author:        seedAuthors[0],
		Content:       "Analysis of Polymarket's tokenomics reveals strong fundamentals. The platform's revenue model is sustainable and the team has a clear roadmap.",
		Tags:          []string{"tokenomics", "analysis"},
		ExpectedLabel: "good",
	},
	{
		ProjectSlug:   "kaito",
		Author:        seedAuthors[3],
		Content:       "Kaito is the best project ever! Everyone should invest now!",
		Tags:          []string{"hype"},
		ExpectedLabel: "shitposting",
	},
	{
		ProjectSlug:   "polymarket",
		Author:        seedAuthors[2],
		Content:       "Polymarket's integration with various data sources makes it a powerful tool for information markets. The UI could be improved though.",
		Tags:          []string{"product"},
		ExpectedLabel: "good",
	},
	{
		ProjectSlug:   "kaito",
		Author:        seedAuthors[4],
		Content:       "What is Kaito? Can someone explain?",
		ExpectedLabel: "borderline",
	},
	{
		ProjectSlug:   "polymarket",
		Author:        seedAuthors[1],
		Content:       "Polymarket's recent partnership announcement shows strong growth potential. The team is executing well on their vision.",
		Tags:          []string{"partnerships"},
		ExpectedLabel: "good",
	},
	{
		ProjectSlug:   "kaito",
		Author:        seedAuthors[3],
		Content:       "Kaito AI features are impressive. The natural language processing capabilities are state-of-the-art.",
		Tags:          []string{"ai", "analysis"},
		ExpectedLabel: "good",
	},
	{
		ProjectSlug:   "polymarket",
		Author:        seedAuthors[4],
		Content:       "MOON MOON MOON 🚀🚀🚀 BUY NOW!!!",
		Tags:          []string{"hype"},
		ExpectedLabel: "shitposting",
	},
}
