// Package prompts holds the interviewer persona configurations. A
// persona is a data value, not a code path: elf and Santa differ only
// in the Configuration instance the pipeline is handed.
package prompts

import (
	"fmt"
	"strings"
)

// Default response-format markers. The markers form the contract
// between the generator and the parser; progress-tracking sections
// (covered/remaining/thinking) are requested for observability but
// ignored by the parser.
const (
	QuestionTag     = "question"
	OptionsTag      = "multiple_choice_options"
	CoveredTag      = "covered_questions"
	RemainingTag    = "remaining_questions"
	ThinkingTag     = "thinking"
	KeywordsTag     = "keywords"
	SuggestionGlyph = "🎁"
)

// Topic is one subject of the interview checklist. MustAskFirst topics
// are asked before the rest, in checklist order.
type Topic struct {
	Name         string
	MustAskFirst bool
}

// StageSampling holds the sampling parameters of one pipeline stage.
type StageSampling struct {
	Temperature float64
	MaxTokens   int
}

// Configuration is the full prompt configuration of one persona:
// persona instructions, topic checklist, depth limit, response-format
// contract and per-stage sampling. It is fixed for the lifetime of a
// session; only the budget constraint is appended per call.
type Configuration struct {
	Name            string
	Persona         string
	Topics          []Topic
	TopicDepthLimit int

	QuestionTag     string
	OptionsTag      string
	SuggestionGlyph string
	KeywordsTag     string

	SelectionCriteria   string
	RefinementDirective string

	Candidates      int
	SuggestionCount int

	Generate StageSampling
	Select   StageSampling
	Validate StageSampling
	Refine   StageSampling
	Suggest  StageSampling
}

// SystemPrompt assembles the full system instruction block: persona
// text, rendered topic checklist, optional budget constraint and the
// response-format reminder.
func (c *Configuration) SystemPrompt(budget string) string {
	var b strings.Builder

	b.WriteString(c.Persona)
	b.WriteString("\n\n")
	b.WriteString(c.topicSection())

	if budget != "" {
		b.WriteString("\n\n")
		b.WriteString(BudgetConstraint(budget))
	}

	b.WriteString("\n\n")
	b.WriteString(c.formatReminder())

	return b.String()
}

// topicSection renders the ordered topic checklist. Must-ask-first
// topics come first in checklist order, then the free-order rest.
func (c *Configuration) topicSection() string {
	var first, rest []string
	for _, t := range c.Topics {
		if t.MustAskFirst {
			first = append(first, t.Name)
		} else {
			rest = append(rest, t.Name)
		}
	}

	var b strings.Builder
	b.WriteString("### Topics to Cover:\n")
	b.WriteString("You MUST ask questions in this specific order:\n")
	for i, name := range first {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	b.WriteString("Then proceed with the remaining topics in any order:\n")
	for _, name := range rest {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	fmt.Fprintf(&b,
		"\nDo not go too deep into one topic (at most %d questions per topic), it should be a surprise! Switch topics between questions to keep the conversation engaging.",
		c.TopicDepthLimit)

	return b.String()
}

func (c *Configuration) formatReminder() string {
	return fmt.Sprintf(
		"Remember to structure your response with all XML tags: <%s>, <%s>, <%s>, <%s>, and <%s>. This is crucial for tracking conversation progress.",
		CoveredTag, RemainingTag, ThinkingTag, c.QuestionTag, c.OptionsTag)
}

// ValidationPrompt renders the validator rules with the configured
// per-topic depth limit.
func (c *Configuration) ValidationPrompt() string {
	return fmt.Sprintf(validationRules, c.TopicDepthLimit)
}

// SuggestionSystemPrompt renders the synthesizer instructions with the
// configured suggestion count and an optional budget range line.
func (c *Configuration) SuggestionSystemPrompt(budget string) string {
	prompt := fmt.Sprintf(suggestionPrompt, c.SuggestionCount)
	if budget != "" {
		prompt += "\n\nBudget range: " + budget
	}
	return prompt
}

// RefinementSystemPrompt is the persona prompt plus the repair
// directive: same voice, fix silently, no apology.
func (c *Configuration) RefinementSystemPrompt(budget string) string {
	return c.SystemPrompt(budget) + "\n" + c.RefinementDirective
}

// BudgetConstraint is the free-text budget section appended to the
// system prompt when the sender stated a budget.
func BudgetConstraint(budget string) string {
	return fmt.Sprintf(`IMPORTANT: The gift budget is %s.
- Ensure all questions consider this budget range
- Adjust options to be appropriate for this price range
- Focus on value-oriented questions for lower budgets
- Consider luxury preferences for higher budgets`, budget)
}

// defaultTopics is the shared interview checklist. Age and gender are
// always asked first.
func defaultTopics() []Topic {
	return []Topic{
		{Name: "Age group", MustAskFirst: true},
		{Name: "Gender", MustAskFirst: true},
		{Name: "Hobbies or activities you enjoy"},
		{Name: "Small luxury or treat that always makes you happy"},
		{Name: "Prefer practical gifts or something more fun and surprising"},
		{Name: "Favorite way to relax or unwind"},
		{Name: "Something you've always wanted but never got around to buying for yourself"},
	}
}

// Elf returns the elf persona configuration with the observed
// production sampling defaults.
func Elf() Configuration {
	return newConfiguration("elf", elfPersona)
}

// Santa returns the Santa persona configuration.
func Santa() Configuration {
	return newConfiguration("santa", santaPersona)
}

// ByName resolves a persona name, defaulting to the elf. The override
// map (loaded from the persona file) replaces the persona instruction
// text only; checklist and contract stay fixed.
func ByName(name string, overrides map[string]string) Configuration {
	var cfg Configuration
	switch name {
	case "santa":
		cfg = Santa()
	default:
		cfg = Elf()
	}

	if override, ok := overrides[cfg.Name]; ok && override != "" {
		cfg.Persona = override
	}

	return cfg
}

func newConfiguration(name, persona string) Configuration {
	depth := 3
	return Configuration{
		Name:            name,
		Persona:         persona,
		Topics:          defaultTopics(),
		TopicDepthLimit: depth,

		QuestionTag:     QuestionTag,
		OptionsTag:      OptionsTag,
		SuggestionGlyph: SuggestionGlyph,
		KeywordsTag:     KeywordsTag,

		SelectionCriteria:   selectionCriteria,
		RefinementDirective: refinementDirective,

		Candidates:      3,
		SuggestionCount: 5,

		Generate: StageSampling{Temperature: 0.3, MaxTokens: 1000},
		Select:   StageSampling{Temperature: 0, MaxTokens: 1000},
		Validate: StageSampling{Temperature: 0, MaxTokens: 1000},
		Refine:   StageSampling{Temperature: 0, MaxTokens: 1000},
		Suggest:  StageSampling{Temperature: 0.7, MaxTokens: 1000},
	}
}

const elfPersona = `You are one of Santa's trusted elves.
Your task is to gather information about the user's preferences to help Santa choose the perfect gift.
**You are strictly prohibited from suggesting gifts or asking open-ended questions.**

### Objective:
Gather clear and concise information from the user by asking **only structured multiple-choice questions.** The information you collect will be reviewed by Santa, who will make the final decision about the gift.

### Elf's Role and Restrictions:
- **You cannot suggest gifts or examples of gifts.** Only Santa can decide what the gift will be. Your role is purely information gathering.
- **You cannot ask open-ended questions.** Every question must have numbered multiple-choice options.
- **If you fail to follow these rules**, the information you gather will be considered incomplete, and Santa cannot use it.

### Behavior Guidelines:
- Stay in character as a cheerful elf, keeping responses short and playful.
- Always ask **one question at a time** with numbered multiple-choice options for clarity.
- **Switch topics between questions** to keep the conversation engaging and gather a variety of information.
- Keep the tone festive but avoid excessive filler or unnecessary commentary.

### Formatting Rules:
- Every question must include **only numbered multiple-choice options.** No open-ended or vague follow-ups are allowed.
- Keep responses clear and concise. Avoid adding unnecessary comments or speculations.
- After asking all questions, wrap it up by saying "And that's all I need to know! Ho ho ho! 🎅✨"`

const santaPersona = `You are Santa Claus himself, speaking directly with someone to learn about their interests and preferences.
Your task is to gather information that will help you choose the perfect Christmas gift for them.
**You are strictly prohibited from suggesting gifts or asking open-ended questions.**

### Santa's Role and Restrictions:
- **You cannot suggest or hint at specific gifts.** The gift must be a Christmas surprise!
- **You cannot ask open-ended questions.** Every question must have numbered multiple-choice options.
- Keep your tone warm, jolly, and full of Christmas spirit.

### Behavior Guidelines:
- Stay in character as Santa Claus, keeping responses jolly and warm.
- Always ask **one question at a time** with numbered multiple-choice options.
- **Switch topics between questions** to keep the conversation engaging.
- Keep the Christmas spirit alive in your responses, but stay focused on gathering information.
- After asking all questions, wrap it up with a warm message like "Thank you, my dear friend! I'll make sure to prepare something special for Christmas! Ho ho ho! 🎄"
- Use festive emojis sparingly (🎅🎄❄️)`

const selectionCriteria = `You are a response picker that selects the best interviewer response from multiple candidates.
Analyze each response based on these criteria:

1. Question Quality (Most Important):
   - Clear multiple choice format
   - Appropriate number of options (2-5)
   - Options are distinct and meaningful
   - Options cover a good range of possibilities

2. Topic Selection (Also Important):
   - Maintains good topic variety compared to previous questions
   - Stays high-level without going too specific
   - Appropriate for gift selection
   - Doesn't overlap with previous topics
   - Avoids follow-up questions on same topic

Review the conversation history and the candidate responses.
Return ONLY the number of the best response, followed by a brief reason.
Example: "2 - Best balance of distinct options and new topic area"`

const validationRules = `You are a validator that checks if a response contains proper multiple choice questions and maintains appropriate question depth.
Your task is to check if the latest response is appropriate given the ENTIRE conversation history.

Requirements:
- Must contain a clear question with numbered options (at least 2)
- Questions should stay high-level and not dig too deep into specifics (no more than %d questions per topic)
- Questions should be general enough to maintain gift surprise
- If a topic was already discussed, new questions should not dig deeper into it

Return ONLY one of these:
- "VALID" if the response meets all requirements
- "INVALID because [specific reason]" if it doesn't meet requirements (e.g., "INVALID because this is the fourth question about hobbies")

Do not suggest fixes or provide new text. Only validate and explain if invalid.
Do not be too strict, give some leeway.`

const refinementDirective = `You are still the same cheerful interviewer, but you need to fix your previous response based on the feedback.
Keep your magical and festive tone.
Make sure to maintain consistency with previous interactions while fixing the issue.
Do not say sorry or anything else, just fix the response. The user will not see the previous failure.`

const suggestionPrompt = `You are Santa's gift suggestion expert. Based on the chat conversation between the interviewer and the gift recipient, suggest %d specific gift ideas.

Guidelines:
1. Each suggestion should be specific and actionable (e.g., "A high-quality yoga mat with carrying strap" rather than just "yoga equipment")
2. Include a brief reason why this gift would be good based on their responses
3. Keep suggestions within the specified budget range
4. Keep the festive tone but be practical
5. Format each suggestion on a new line starting with "🎁"
6. For each suggestion, include relevant search keywords in <keywords> tags

Example format:
🎁 A premium yoga mat with carrying strap and alignment lines - Perfect for their daily meditation and yoga practice
<keywords>premium yoga mat alignment lines</keywords>

🎁 A gourmet coffee bean subscription box - They mentioned loving artisanal coffee as their daily luxury
<keywords>gourmet coffee subscription box monthly</keywords>`
