package emoji

import (
	"strings"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/utils"
)

const (
	MinNameLength = 2
	MaxNameLength = 32
)

// SanitizeName turns user input into a name Discord accepts for an emoji.
func SanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	name = constants.InvalidNameCharsRegex.ReplaceAllString(name, "")
	name = utils.Truncate(name, MaxNameLength)

	if len(name) < MinNameLength {
		return "", utils.NewUserInputError("Emoji names must be at least %d characters long and only use letters, numbers and underscores.", MinNameLength)
	}

	return name, nil
}
