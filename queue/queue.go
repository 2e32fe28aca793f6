// Package queue holds emojis added by regular members until a moderator
// approves or denies them in the guild's queue channel.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/database/models"
	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/utils"
)

const deleteReason = "queued for approval"

type Queue struct {
	client    platform.Client
	settings  database.SettingsStore
	pending   database.PendingStore
	installer *emoji.Installer
	directory *emoji.Directory
	reactions *utils.Collector[platform.Reaction]

	// Timeout is how long a prompt waits for a moderator. Zero waits forever.
	Timeout time.Duration

	wg     sync.WaitGroup
	mu     sync.Mutex
	active map[string]struct{}
}

func New(
	client platform.Client,
	settings database.SettingsStore,
	pending database.PendingStore,
	installer *emoji.Installer,
	directory *emoji.Directory,
	reactions *utils.Collector[platform.Reaction],
) *Queue {
	return &Queue{
		client:    client,
		settings:  settings,
		pending:   pending,
		installer: installer,
		directory: directory,
		reactions: reactions,
		active:    map[string]struct{}{},
	}
}

// HandleAdded runs every newly added emoji through the queue in the
// background. One slow moderator or failing guild never holds up the rest.
func (q *Queue) HandleAdded(ctx context.Context, guildID snowflake.ID, added []discord.Emoji) {
	for _, e := range added {
		e := e

		q.wg.Add(1)
		go func() {
			defer q.wg.Done()

			state, err := q.Process(ctx, guildID, e)
			logResult(guildID, e.Name, state, err)
		}()
	}
}

// Resume picks up the requests of a guild that were pending when the bot
// stopped. Requests already being handled are skipped.
func (q *Queue) Resume(ctx context.Context, guildID snowflake.ID) {
	requests, err := q.pending.ForGuild(ctx, guildID)
	if err != nil {
		log.Error().Err(err).Str("guild", guildID.String()).Msg("Couldn't load pending emojis")
		return
	}

	for i := range requests {
		req := &requests[i]
		if !q.claim(req.ID) {
			continue
		}

		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			defer q.release(req.ID)

			state, err := q.run(ctx, req)
			logResult(guildID, req.Name, state, err)
		}()
	}
}

// Wait blocks until every flow started by HandleAdded or Resume is done.
func (q *Queue) Wait() {
	q.wg.Wait()
}

// Process decides what happens to an emoji that just appeared in a guild and,
// if it's held for approval, blocks until a moderator decides or the prompt
// times out.
func (q *Queue) Process(ctx context.Context, guildID snowflake.ID, e discord.Emoji) (State, error) {
	settings, err := q.settings.Get(ctx, guildID)
	if err != nil {
		// no channel to report to, leave the emoji alone
		log.Debug().Err(err).Str("guild", guildID.String()).Msg("Couldn't get queue settings")
		return NoQueue, nil
	}
	if settings.QueueChannelID == nil {
		return NoQueue, nil
	}

	uploaderID, ok := q.uploader(ctx, guildID, e)
	if !ok {
		return NoQueue, nil
	}

	img, err := q.installer.Fetch(ctx, e.Name, e.URL())
	if err != nil {
		log.Warn().Err(err).Str("guild", guildID.String()).Msgf(`Couldn't download emoji "%v", leaving it live`, e.Name)
		return NoQueue, nil
	}

	req := &models.PendingEmoji{
		DefaultModel: models.DefaultModel{ID: uuid.NewString()},
		GuildId:      guildID.String(),
		EmojiId:      e.ID.String(),
		Name:         e.Name,
		ImageUrl:     e.URL(),
		Image:        img.Data,
		ImageType:    string(img.Type),
		Animated:     e.Animated,
		UploaderId:   uploaderID.String(),
		ChannelId:    settings.QueueChannelID.String(),
	}

	// claimed before it's stored so a concurrent Resume can't post a second prompt
	if !q.claim(req.ID) {
		return NoQueue, fmt.Errorf("pending emoji %v is already being handled", req.ID)
	}
	defer q.release(req.ID)

	if err := q.pending.Create(ctx, req); err != nil {
		return NoQueue, err
	}

	if err := q.client.DeleteEmoji(ctx, guildID, e.ID, deleteReason); err != nil {
		q.discard(ctx, req)
		return NoQueue, err
	}
	q.directory.Remove(guildID, e.ID)

	return q.run(ctx, req)
}

// run posts the prompt if it isn't up yet, waits for a moderator and applies
// the decision.
func (q *Queue) run(ctx context.Context, req *models.PendingEmoji) (State, error) {
	guildID, err := snowflake.Parse(req.GuildId)
	if err != nil {
		return Pending, fmt.Errorf("pending emoji %v: %w", req.ID, err)
	}

	var (
		channelID snowflake.ID
		messageID snowflake.ID
		waiter    *utils.Waiter[platform.Reaction]
	)

	if req.MessageId == "" {
		channelID, messageID, waiter, err = q.post(ctx, guildID, req)
		if err != nil {
			return NoQueue, err
		}
	} else {
		channelID, err = snowflake.Parse(req.ChannelId)
		if err == nil {
			messageID, err = snowflake.Parse(req.MessageId)
		}
		if err != nil {
			return Pending, fmt.Errorf("pending emoji %v: %w", req.ID, err)
		}

		waiter = q.reactions.Listen(messageID, q.qualifies(messageID))
	}

	waitCtx := ctx
	if q.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	reaction, err := waiter.Wait(waitCtx)
	if err != nil {
		if ctx.Err() != nil {
			// shutting down, the request stays stored for the next start
			return Pending, ctx.Err()
		}

		q.edit(ctx, channelID, messageID, timedOutUpdate(req))
		q.discard(ctx, req)

		return TimedOut, nil
	}

	defer q.discard(ctx, req)

	if reaction.Emoji == constants.Emojis.Deny {
		q.edit(ctx, channelID, messageID, deniedUpdate(req, reaction.UserID))
		return Denied, nil
	}

	installed, err := q.installer.InstallImage(ctx, emoji.Target{
		GuildID: guildID,
		Reason:  fmt.Sprintf("Approved by %v", reaction.UserID),
	}, req.Name, platform.Image{Data: req.Image, Type: discord.IconType(req.ImageType)})
	if err != nil {
		msg, _ := utils.UserMessage(err)
		q.edit(ctx, channelID, messageID, approvalFailedUpdate(req, reaction.UserID, msg))
		return Approved, err
	}

	q.directory.Add(*installed)
	q.edit(ctx, channelID, messageID, approvedUpdate(req, reaction.UserID, installed))

	return Approved, nil
}

// post sends the prompt to the queue channel. The waiter is registered before
// the reactions are added so no vote can slip past.
func (q *Queue) post(ctx context.Context, guildID snowflake.ID, req *models.PendingEmoji) (snowflake.ID, snowflake.ID, *utils.Waiter[platform.Reaction], error) {
	channelID, err := snowflake.Parse(req.ChannelId)
	if err != nil {
		q.restore(ctx, guildID, req)
		return 0, 0, nil, fmt.Errorf("pending emoji %v has no queue channel: %w", req.ID, err)
	}

	msg, err := q.client.SendMessage(ctx, channelID, promptMessage(req))
	if err != nil {
		q.restore(ctx, guildID, req)
		return 0, 0, nil, err
	}

	waiter := q.reactions.Listen(msg.ID, q.qualifies(msg.ID))

	for _, glyph := range []string{constants.Emojis.Approve, constants.Emojis.Deny} {
		if err := q.client.AddReaction(ctx, channelID, msg.ID, glyph); err != nil {
			log.Warn().Err(err).Str("guild", req.GuildId).Msg("Couldn't add reaction to approval prompt")
		}
	}

	if err := q.pending.SetPrompt(ctx, req.ID, channelID, msg.ID); err != nil {
		log.Warn().Err(err).Str("guild", req.GuildId).Msg("Couldn't save approval prompt")
	}
	req.MessageId = msg.ID.String()

	return channelID, msg.ID, waiter, nil
}

// restore puts a held emoji back when its prompt can't be posted, so it isn't
// lost with nobody to approve it.
func (q *Queue) restore(ctx context.Context, guildID snowflake.ID, req *models.PendingEmoji) {
	defer q.discard(ctx, req)

	installed, err := q.installer.InstallImage(ctx, emoji.Target{
		GuildID: guildID,
		Reason:  "Approval queue unavailable",
	}, req.Name, platform.Image{Data: req.Image, Type: discord.IconType(req.ImageType)})
	if err != nil {
		log.Error().Err(err).Str("guild", req.GuildId).Msgf(`Couldn't restore held emoji "%v"`, req.Name)
		return
	}

	q.directory.Add(*installed)
}

func (q *Queue) qualifies(messageID snowflake.ID) func(r platform.Reaction) bool {
	selfID := q.client.SelfID()

	return func(r platform.Reaction) bool {
		if r.MessageID != messageID || r.Bot || r.UserID == selfID {
			return false
		}

		return r.Emoji == constants.Emojis.Approve || r.Emoji == constants.Emojis.Deny
	}
}

// uploader returns who added the emoji when it has to go through the queue.
// Administrators, the bot itself and unknown uploaders bypass it.
func (q *Queue) uploader(ctx context.Context, guildID snowflake.ID, e discord.Emoji) (snowflake.ID, bool) {
	full, err := q.client.GetEmoji(ctx, guildID, e.ID)
	if err != nil || full.Creator == nil {
		return 0, false
	}

	creatorID := full.Creator.ID
	if creatorID == q.client.SelfID() {
		return 0, false
	}

	perms, err := q.client.MemberPermissions(ctx, guildID, creatorID)
	if err != nil {
		return 0, false
	}
	if perms.Has(discord.PermissionAdministrator) {
		return 0, false
	}

	return creatorID, true
}

func (q *Queue) edit(ctx context.Context, channelID snowflake.ID, messageID snowflake.ID, update discord.MessageUpdate) {
	if _, err := q.client.EditMessage(ctx, channelID, messageID, update); err != nil {
		log.Warn().Err(err).Str("message", messageID.String()).Msg("Couldn't update approval prompt")
	}
}

func (q *Queue) discard(ctx context.Context, req *models.PendingEmoji) {
	if err := q.pending.Delete(context.WithoutCancel(ctx), req.ID); err != nil {
		log.Error().Err(err).Str("guild", req.GuildId).Msgf(`Couldn't delete pending emoji "%v"`, req.Name)
	}
}

func (q *Queue) claim(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.active[id]; ok {
		return false
	}
	q.active[id] = struct{}{}

	return true
}

func (q *Queue) release(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.active, id)
}

func logResult(guildID snowflake.ID, name string, state State, err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().
			Err(err).
			Str("guild", guildID.String()).
			Str("state", state.String()).
			Msgf(`Approval flow for emoji "%v" failed`, name)
		return
	}

	if state.Terminal() && state != NoQueue {
		log.Info().
			Str("guild", guildID.String()).
			Str("state", state.String()).
			Msgf(`Emoji "%v" left the approval queue`, name)
	}
}
