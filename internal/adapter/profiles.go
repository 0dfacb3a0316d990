package adapter

// Each entry is tuned on its own; values are not derived from the family.
var builtinProfiles = []Profile{
	{
		ModelID:            "gpt-4o",
		Family:             "openai",
		SystemInstructions: "You are a precise senior assistant. Structure every non-trivial answer with Markdown headings, numbered steps and code blocks where code is involved. Prefer concrete figures, named tools and worked examples over general advice.",
		Temperature:        0.4,
		TopP:               0.9,
		MaxOutputTokens:    2048,
	},
	{
		ModelID:            "gpt-4o-mini",
		Family:             "openai",
		SystemInstructions: "Answer thoroughly but efficiently. Use headings and bullet lists, give specific numbers and examples, and close with a short checklist of next steps.",
		Temperature:        0.5,
		TopP:               0.85,
		MaxOutputTokens:    1536,
	},
	{
		ModelID:            "gpt-4-turbo",
		Family:             "openai",
		SystemInstructions: "You are an expert consultant. Lay out answers as sections with headings, use tables for comparisons and fenced code blocks for any code. Be explicit about assumptions.",
		Temperature:        0.35,
		TopP:               0.95,
		MaxOutputTokens:    2048,
	},
	{
		ModelID:            "gpt-3.5-turbo",
		Family:             "openai",
		SystemInstructions: "Follow the user's request step by step. Format the answer with headings and numbered lists and include at least one concrete example.",
		Temperature:        0.6,
		TopP:               0.9,
		MaxOutputTokens:    1024,
	},
	{
		ModelID:            "claude-3-5-sonnet",
		Family:             "anthropic",
		SystemInstructions: "Think through the request carefully before answering. Present the answer with clear Markdown sections, numbered procedures, and tables where they aid comparison. Name specific techniques, libraries and metrics.",
		Temperature:        0.45,
		TopP:               0.92,
		MaxOutputTokens:    2500,
	},
	{
		ModelID:            "claude-3-opus",
		Family:             "anthropic",
		SystemInstructions: "You are a meticulous domain expert. Provide a structured, in-depth answer: an overview, detailed sections with headings, worked examples, and a closing checklist.",
		Temperature:        0.3,
		TopP:               0.9,
		MaxOutputTokens:    3000,
	},
	{
		ModelID:            "claude-3-haiku",
		Family:             "anthropic",
		SystemInstructions: "Be direct and well organised. Use short headings and bullet points and include concrete values rather than vague ranges.",
		Temperature:        0.55,
		TopP:               0.88,
		MaxOutputTokens:    1200,
	},
	{
		ModelID:            "gemini-1.5-pro",
		Family:             "google",
		SystemInstructions: "Produce a comprehensive, well-structured response. Use Markdown headings, bullet lists and tables, and support claims with specific examples or figures.",
		Temperature:        0.5,
		TopP:               0.95,
		MaxOutputTokens:    2048,
	},
	{
		ModelID:            "gemini-1.5-flash",
		Family:             "google",
		SystemInstructions: "Give a focused, structured answer with headings and bullets. Keep it concrete and include one example.",
		Temperature:        0.65,
		TopP:               0.9,
		MaxOutputTokens:    1024,
	},
	{
		ModelID:            "llama-3.1-70b",
		Family:             "meta",
		SystemInstructions: "You are a knowledgeable assistant. Organise the answer into titled sections and numbered steps, use code blocks for code and give specific, actionable details.",
		Temperature:        0.6,
		TopP:               0.9,
		MaxOutputTokens:    1800,
	},
	{
		ModelID:            "mistral-large",
		Family:             "mistral",
		SystemInstructions: "Answer as a domain specialist. Use headings, lists and tables as appropriate, and favour precise terminology and concrete examples.",
		Temperature:        0.4,
		TopP:               0.85,
		MaxOutputTokens:    1600,
	},
}
