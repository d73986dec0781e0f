package utils

import (
	"fmt"

	"github.com/disgoorg/snowflake/v2"
)

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

// UserMention formats a raw id as a Discord user mention.
func UserMention(id snowflake.ID) string {
	return fmt.Sprintf("<@%s>", id)
}

// ChannelMention formats a raw id as a Discord channel mention.
func ChannelMention(id snowflake.ID) string {
	return fmt.Sprintf("<#%s>", id)
}
