package greeting

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// headings is the fixed catalog of congratulation templates. {day} must be
// replaced with an ordinal number followed by a space, or a single space.
var headings = []string{
	"Happy {day}birthday, {name}! 🎉",
	"It's {name}'s {day}birthday today! Congratulations! 🎉",
	"Oh look, it's {name}'s {day}birthday! Congratz! 🎉",
	"Happy {day}birthday to you, {name}! 🎉",
}

// comments is the fixed catalog of follow-up lines appended after the heading.
var comments = []string{
	"How does it feel to have aged by another year?",
	"Starting to feel old?",
	"Imagine aging.",
	"Soon you may actually sit with the adults.",
	"Feeling old yet?",
	"You know what they say, good fruit takes time to ripen.",
	"May all your wishes come true, except the illegal ones.",
	"May all your wishes come true, especially the illegal ones.",
	"May all your wishes come true.",
	"Imagine being born.",
	"Wishing you an abundance of love.",
	"Hope you're gonna celebrate!",
	"Hope you're gonna party!",
	"You did a great job in this year of your life. No really, I mean it.",
	"You got older! Hooray!",
	"You aged by another year. How does that make you feel?",
	"You're one year closer to your death.",
	"... more like, happy 🐝-rthday.\n\nHaha.",
	"You did the thing, you got older!",
	"Aging like fine wine, I'm sure.",
	"Aging like fine milk, I'm sure.",
	"Embrace your inner party animal and celebrate.",
	"Sounds like someone's gotta celebrate.",
	"I didn't know what to get you, so I got you this notification to your birthday.",
	"Statistics show that those who have the most birthdays live the longest.",
	"Age is merely the number of years the world has been enjoying you.",
	"Remember that growing old is mandatory, but growing up is optional!\n\nAnd you should really consider growing up.",
	"If anyone calls you old, hit them with your cane and throw your teeth at them.",
	"One year closer to getting that drip with those velcro shoes.",
	"Go solve your crossword puzzles like the old person you just became.",
	"Turn up the meow-sic and let's get this paw-ty started! 🐱",
	"What type of music is scary for birthday balloons? Pop music.",
	"What goes up and never goes down? Your age.",
	"What does every birthday end with? The letter Y.",
	"How do raccoons celebrate their birthday? They get trashed.",
	"Why do cats love birthdays? They love to purr-ty. 🐱",
	"Don't die.",
	"Careful. Too many birthdays will eventually kill you.",
}

// ordinalWords maps the last digit of a number to a word whose trailing two
// characters form the ordinal suffix ("first" -> "st").
var ordinalWords = []string{
	"zeroeth",
	"first",
	"second",
	"third",
	"fourth",
	"fifth",
	"sixth",
	"seventh",
	"eighth",
	"nineth",
}

// Ordinal renders n with its English ordinal suffix, e.g. 21 -> "21st".
// The irregular teens 11-13 always take "th".
func Ordinal(n int) string {
	if r := n % 100; r >= 11 && r <= 13 {
		return strconv.Itoa(n) + "th"
	}
	word := ordinalWords[((n%10)+10)%10]
	return strconv.Itoa(n) + word[len(word)-2:]
}

// Composer selects a congratulatory message from the fixed catalogs. The
// random source is injectable so tests can pin the selection.
type Composer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewComposer() *Composer {
	return NewComposerWithSource(rand.NewSource(time.Now().UnixNano()))
}

func NewComposerWithSource(src rand.Source) *Composer {
	return &Composer{rng: rand.New(src)}
}

// Compose builds the full congratulation text for the given member mention.
// A nil age collapses the {day} placeholder to a single space, producing
// phrasing like "Happy birthday"; otherwise the ordinal of the age plus a
// trailing space is substituted.
func (c *Composer) Compose(name string, age *int) string {
	c.mu.Lock()
	heading := headings[c.rng.Intn(len(headings))]
	comment := comments[c.rng.Intn(len(comments))]
	c.mu.Unlock()

	day := " "
	if age != nil {
		day = Ordinal(*age) + " "
	}

	heading = strings.ReplaceAll(heading, "{day}", day)
	heading = strings.ReplaceAll(heading, "{name}", name)

	return heading + "\n\n" + comment
}
