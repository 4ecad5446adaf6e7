package sections

import "DailyEdition/internal/usecase"

const masthead = "The Keele Street Journal"

var featuredCategories = []string{"Markets", "Economy", "Policy", "Tech", "Global Trade", "Energy", "Banking"}

var (
	whatsNewsPrompt = usecase.MustPrompt("whats-news", `
You are the Senior Editor of '`+masthead+`'.

Raw Headlines:
{{.Listing}}
Task:
1. Select the {{.MaxSelect}} most important stories.
2. Rewrite them into a single, punchy sentence each.
3. Style: Professional, dense, "Wall Street Journal" style.
4. Start each bullet with "- ".
5. Output ONLY the {{.MaxSelect}} bullets.
`)

	heroPrompt = usecase.MustPrompt("hero-story", `
You are the Editor-in-Chief of '`+masthead+`'.
Task: Write a "Special Report" based on this news.
{{.Listing}}
Output JSON: { "title": "...", "subtitle": "...", "content": ["para1", "para2", "para3"], "keyPoints": ["pt1", "pt2"] }
`)

	heroFeaturePrompt = usecase.MustPrompt("hero-feature", `
Task: Summarize this news for a small card.
{{.Listing}}
Output JSON: { "category": "Market Update", "title": "Short Title", "summary": "One sentence summary." }
`)

	featuredPrompt = usecase.MustPrompt("featured-stories", `
You are the Managing Editor of '`+masthead+`', a financial newspaper for university economics students.

Raw Candidate Stories:
{{.Listing}}
TASK:
1. Select the {{.MaxSelect}} most diverse and impactful stories. Avoid picking two stories about the same topic.
2. Assign each a category from: {{join .Categories ", "}}.
3. Write a punchy, short title (max 12 words) and a one-sentence summary for each.

OUTPUT FORMAT (JSON array):
[
  { "category": "Markets", "title": "Short Punchy Title Here", "summary": "One clear sentence summarizing the story." }
]
`)

	opinionsPrompt = usecase.MustPrompt("opinions", `
You are the Opinion Editor of '`+masthead+`', an economics newspaper for York University students.

Today's top news headlines ({{.Today}}):
{{.Listing}}
TASK:
Generate {{.MaxSelect}} provocative opinion column teasers inspired by today's news.
Each must take a clear editorial stance. Be bold, not neutral.

Voices (generate a realistic fictional name for each):
1. A university economics professor (academic perspective)
2. A student association president (student/young perspective)
3. A financial analyst (market/industry perspective)

OUTPUT FORMAT (JSON array):
[
  {
    "title": "Provocative Opinion Title (max 10 words)",
    "author": "Dr. Full Name",
    "role": "Prof. of Macroeconomics",
    "snippet": "Two punchy sentences summarizing the opinion's argument."
  }
]
`)

	deepDivePrompt = usecase.MustPrompt("deep-dive", `
You are the Chief Economist of '`+masthead+`'.

Current Market Data:
{{.Listing}}
TASK:
1. Analyze the data above.
2. Generate content for the "Market Deep Dive" section.
3. Specifically, create {{.MaxSelect}} short Analysis Cards and 1 Highlight Stat.

OUTPUT FORMAT (JSON):
{
  "cards": [
    { "title": "Short Analysis Title (e.g. 'Bond Yields Spike')", "analysis": "Two sentences explaining what this means for Canadian students/investors." }
  ],
  "stat": { "value": "e.g. 4.2%", "label": "Current 10Y Yield", "source": "Yahoo Finance Data" }
}
`)

	globalBriefingPrompt = usecase.MustPrompt("global-briefing", `
You are the Foreign Editor of '`+masthead+`'.

Raw Global News:
{{.Listing}}
TASK:
1. Select the top {{.MaxSelect}} most critical geopolitical/economic stories.
2. Ignore sports, celebrity news, or local crime. Focus on MACRO impact (trade, war, policy).
3. Output a valid JSON array.

OUTPUT FORMAT (JSON):
[
  { "headline": "Punchy, serif-style headline (max 10 words)", "context": "Two sentences explaining why this matters to the global economy." }
]
`)

	campusPrompt = usecase.MustPrompt("campus-news", `
You are the Campus Editor of '`+masthead+`'.
Raw Articles: {{.JSON}}

TASK:
1. Select the best {{.MaxSelect}} stories for students.
2. Keep all fields (link, image, author) exactly as is.
3. If 'image' is null, keep it null (we will fix it later).

OUTPUT JSON Array: [ { "title": "...", "summary": "...", "link": "...", "image": "...", "author": "..." } ]
`)
)
