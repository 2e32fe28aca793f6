package models

import "github.com/kamva/mgm/v3"

// PendingEmoji is an emoji that was removed from its guild and waits for a
// moderator's decision. The image is kept so it can be installed again after
// the original emoji is gone.
type PendingEmoji struct {
	DefaultModel `bson:",inline"`

	GuildId string `json:"guild_id" bson:"guild_id"`

	// ID of the emoji before it was removed
	EmojiId string `json:"emoji_id" bson:"emoji_id"`

	Name      string `json:"name"       bson:"name"`
	ImageUrl  string `json:"image_url"  bson:"image_url"`
	Image     []byte `json:"-"          bson:"image,omitempty"`
	ImageType string `json:"image_type" bson:"image_type,omitempty"`
	Animated  bool   `json:"animated"   bson:"animated"`

	UploaderId string `json:"uploader_id" bson:"uploader_id"`

	// Approval message, empty until it's posted
	ChannelId string `json:"channel_id,omitempty" bson:"channel_id,omitempty"`
	MessageId string `json:"message_id,omitempty" bson:"message_id,omitempty"`
}

func (pemoji *PendingEmoji) CollectionName() string {
	return "pending_emojis"
}

func PendingEmojiColl() *mgm.Collection {
	return mgm.Coll(&PendingEmoji{})
}
