package words

import (
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// LooksSwapped reports whether the word is written in Cyrillic while the
// translation is Latin, which usually means the two fields were filled in the
// wrong order.
func LooksSwapped(word, translation string) bool {
	w := whatlanggo.Detect(word)
	t := whatlanggo.Detect(translation)
	return w.Script == unicode.Cyrillic && t.Script == unicode.Latin
}
