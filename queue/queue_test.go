package queue

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/passivity/emojis/constants"
	"github.com/passivity/emojis/database"
	"github.com/passivity/emojis/database/models"
	"github.com/passivity/emojis/emoji"
	"github.com/passivity/emojis/platform"
	"github.com/passivity/emojis/platform/platformtest"
	"github.com/passivity/emojis/utils"
)

const (
	botID     snowflake.ID = 1
	guildID   snowflake.ID = 100
	channelID snowflake.ID = 300
	userID    snowflake.ID = 400
	modID     snowflake.ID = 500
	adminID   snowflake.ID = 600
)

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// imageClient answers every request with a small PNG and the given status.
func imageClient(t *testing.T, status int) *http.Client {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	data := buf.Bytes()

	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{},
			Body:       io.NopCloser(bytes.NewReader(data)),
			Request:    r,
		}, nil
	})}
}

type failingSettings struct{}

func (failingSettings) Get(context.Context, snowflake.ID) (database.Settings, error) {
	return database.Settings{}, errors.New("queue_channel_id missing")
}

func (failingSettings) Update(context.Context, snowflake.ID, database.SettingsPatch) error {
	return nil
}

type harness struct {
	queue     *Queue
	fake      *platformtest.Fake
	settings  *database.MemorySettings
	pending   *database.MemoryPending
	reactions *utils.Collector[platform.Reaction]
}

func setup(t *testing.T, status int) *harness {
	t.Helper()

	fake := platformtest.New(botID)
	fake.SetPermissions(userID, discord.PermissionSendMessages)
	fake.SetPermissions(modID, discord.PermissionSendMessages|discord.PermissionManageMessages)
	fake.SetPermissions(adminID, discord.PermissionAdministrator)

	settings := database.NewMemorySettings()
	queueChannel := channelID
	require.NoError(t, settings.Update(context.Background(), guildID, database.SettingsPatch{QueueChannelID: &queueChannel}))

	pending := database.NewMemoryPending()
	reactions := utils.NewCollector[platform.Reaction]()
	directory := emoji.NewDirectory()
	directory.Seed(guildID, nil)

	q := New(fake, settings, pending, emoji.NewInstaller(imageClient(t, status), fake), directory, reactions)

	return &harness{queue: q, fake: fake, settings: settings, pending: pending, reactions: reactions}
}

type result struct {
	state State
	err   error
}

func (h *harness) process(ctx context.Context, e discord.Emoji) <-chan result {
	done := make(chan result, 1)

	go func() {
		state, err := h.queue.Process(ctx, guildID, e)
		done <- result{state: state, err: err}
	}()

	return done
}

// waitForPrompt waits until the approval prompt is posted, reacted to and
// saved, and returns its id.
func (h *harness) waitForPrompt(t *testing.T) snowflake.ID {
	t.Helper()

	var messageID snowflake.ID
	require.Eventually(t, func() bool {
		requests, err := h.pending.ForGuild(context.Background(), guildID)
		if err != nil || len(requests) != 1 || requests[0].MessageId == "" {
			return false
		}

		messageID = snowflake.MustParse(requests[0].MessageId)
		return h.reactions.Waiting(messageID)
	}, time.Second, 5*time.Millisecond)

	return messageID
}

func (h *harness) react(messageID snowflake.ID, user snowflake.ID, glyph string) bool {
	return h.reactions.Dispatch(messageID, platform.Reaction{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		UserID:    user,
		Emoji:     glyph,
	})
}

func awaitResult(t *testing.T, done <-chan result) result {
	t.Helper()

	select {
	case r := <-done:
		return r
	case <-time.After(time.Second):
		t.Fatal("approval flow did not finish")
		return result{}
	}
}

func TestApproveScenario(t *testing.T) {
	h := setup(t, http.StatusOK)
	pog := h.fake.AddEmoji(guildID, "pog", userID)

	done := h.process(context.Background(), pog)
	messageID := h.waitForPrompt(t)

	assert.False(t, h.fake.HasEmoji(guildID, "pog"), "pog must not be live while pending")

	calls := h.fake.Calls()
	deleted := slices.Index(calls, "delete emoji")
	prompted := slices.Index(calls, "send message")
	require.NotEqual(t, -1, deleted)
	require.NotEqual(t, -1, prompted)
	assert.Less(t, deleted, prompted, "emoji must be deleted before the prompt is posted")

	sent := h.fake.SentTo(channelID)
	require.Len(t, sent, 1)
	prompt := sent[0].Message
	require.Len(t, prompt.Embeds, 1)
	assert.Contains(t, prompt.Embeds[0].Description, "`:pog:`")
	assert.Contains(t, prompt.Embeds[0].Description, "<@400>")
	assert.Equal(t, "attachment://pog.png", prompt.Embeds[0].Image.URL)
	require.Len(t, prompt.Files, 1)
	assert.Equal(t, "pog.png", prompt.Files[0].Name)

	glyphs := []string{}
	for _, r := range h.fake.Reactions {
		if r.MessageID == messageID {
			glyphs = append(glyphs, r.Emoji)
		}
	}
	assert.Equal(t, []string{constants.Emojis.Approve, constants.Emojis.Deny}, glyphs)

	require.True(t, h.react(messageID, modID, constants.Emojis.Approve))

	r := awaitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, Approved, r.state)
	assert.True(t, h.fake.HasEmoji(guildID, "pog"))

	edit, ok := h.fake.LastEdit(messageID)
	require.True(t, ok)
	description := (*edit.Embeds)[0].Description
	assert.Contains(t, description, "Approved by <@500>")
	assert.Contains(t, description, "<:pog:")
	assert.Zero(t, h.pending.Len())
}

func TestDenyScenario(t *testing.T) {
	h := setup(t, http.StatusOK)
	pog := h.fake.AddEmoji(guildID, "pog", userID)

	done := h.process(context.Background(), pog)
	messageID := h.waitForPrompt(t)

	require.True(t, h.react(messageID, modID, constants.Emojis.Deny))

	r := awaitResult(t, done)
	require.NoError(t, r.err)
	assert.Equal(t, Denied, r.state)
	assert.False(t, h.fake.HasEmoji(guildID, "pog"))
	assert.Zero(t, h.fake.CallCount("create emoji"))

	edit, ok := h.fake.LastEdit(messageID)
	require.True(t, ok)
	assert.Contains(t, (*edit.Embeds)[0].Description, "Denied by <@500>")
	assert.Zero(t, h.pending.Len())
}

func TestBypass(t *testing.T) {
	tests := []struct {
		name     string
		uploader snowflake.ID
	}{
		{name: "administrator", uploader: adminID},
		{name: "bot itself", uploader: botID},
		{name: "unknown uploader", uploader: 0},
		{name: "uploader not a member", uploader: 999},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, http.StatusOK)
			e := h.fake.AddEmoji(guildID, "pog", tt.uploader)

			state, err := h.queue.Process(context.Background(), guildID, e)
			require.NoError(t, err)
			assert.Equal(t, NoQueue, state)
			assert.True(t, h.fake.HasEmoji(guildID, "pog"))
			assert.Empty(t, h.fake.Sent)
			assert.Zero(t, h.pending.Len())
		})
	}
}

func TestNoQueue(t *testing.T) {
	t.Run("no queue channel", func(t *testing.T) {
		h := setup(t, http.StatusOK)
		require.NoError(t, h.settings.Update(context.Background(), guildID, database.SettingsPatch{ClearQueueChannel: true}))
		e := h.fake.AddEmoji(guildID, "pog", userID)

		state, err := h.queue.Process(context.Background(), guildID, e)
		require.NoError(t, err)
		assert.Equal(t, NoQueue, state)
		assert.Empty(t, h.fake.Calls())
	})

	t.Run("settings lookup error is swallowed", func(t *testing.T) {
		h := setup(t, http.StatusOK)
		h.queue.settings = failingSettings{}
		e := h.fake.AddEmoji(guildID, "pog", userID)

		state, err := h.queue.Process(context.Background(), guildID, e)
		require.NoError(t, err)
		assert.Equal(t, NoQueue, state)
		assert.True(t, h.fake.HasEmoji(guildID, "pog"))
	})

	t.Run("download failure leaves the emoji live", func(t *testing.T) {
		h := setup(t, http.StatusNotFound)
		e := h.fake.AddEmoji(guildID, "pog", userID)

		state, err := h.queue.Process(context.Background(), guildID, e)
		require.NoError(t, err)
		assert.Equal(t, NoQueue, state)
		assert.True(t, h.fake.HasEmoji(guildID, "pog"))
		assert.Zero(t, h.fake.CallCount("delete emoji"))
	})

	t.Run("prompt failure restores the emoji", func(t *testing.T) {
		h := setup(t, http.StatusOK)
		h.fake.FailOn("send message", errors.New("Missing Access"))
		e := h.fake.AddEmoji(guildID, "pog", userID)

		state, err := h.queue.Process(context.Background(), guildID, e)
		assert.Error(t, err)
		assert.Equal(t, NoQueue, state)
		assert.True(t, h.fake.HasEmoji(guildID, "pog"))
		assert.Zero(t, h.pending.Len())
	})
}

func TestIgnoredReactions(t *testing.T) {
	h := setup(t, http.StatusOK)
	pog := h.fake.AddEmoji(guildID, "pog", userID)

	done := h.process(context.Background(), pog)
	messageID := h.waitForPrompt(t)

	assert.False(t, h.react(messageID+1, modID, constants.Emojis.Approve), "other message")
	assert.False(t, h.react(messageID, modID, "👍"), "other glyph")
	assert.False(t, h.react(messageID, botID, constants.Emojis.Approve), "bot itself")
	assert.False(t, h.reactions.Dispatch(messageID, platform.Reaction{
		MessageID: messageID,
		UserID:    777,
		Bot:       true,
		Emoji:     constants.Emojis.Deny,
	}), "other bot")

	select {
	case <-done:
		t.Fatal("ignored reactions resolved the request")
	case <-time.After(20 * time.Millisecond):
	}

	// first qualifying reaction wins
	require.True(t, h.react(messageID, modID, constants.Emojis.Deny))
	assert.False(t, h.react(messageID, adminID, constants.Emojis.Approve))

	r := awaitResult(t, done)
	assert.Equal(t, Denied, r.state)
	assert.False(t, h.fake.HasEmoji(guildID, "pog"))
}

func TestTimeout(t *testing.T) {
	h := setup(t, http.StatusOK)
	h.queue.Timeout = 30 * time.Millisecond
	pog := h.fake.AddEmoji(guildID, "pog", userID)

	r := awaitResult(t, h.process(context.Background(), pog))
	require.NoError(t, r.err)
	assert.Equal(t, TimedOut, r.state)
	assert.False(t, h.fake.HasEmoji(guildID, "pog"))
	assert.Zero(t, h.pending.Len())
	assert.Zero(t, h.reactions.Len())

	messageID := h.fake.SentTo(channelID)[0].ID
	edit, ok := h.fake.LastEdit(messageID)
	require.True(t, ok)
	assert.Contains(t, (*edit.Embeds)[0].Description, "Timed out")
}

func TestShutdownKeepsRequest(t *testing.T) {
	h := setup(t, http.StatusOK)
	pog := h.fake.AddEmoji(guildID, "pog", userID)

	ctx, cancel := context.WithCancel(context.Background())
	done := h.process(ctx, pog)
	h.waitForPrompt(t)
	cancel()

	r := awaitResult(t, done)
	assert.ErrorIs(t, r.err, context.Canceled)
	assert.Equal(t, Pending, r.state)
	assert.Equal(t, 1, h.pending.Len())
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("re-arms a posted prompt", func(t *testing.T) {
		h := setup(t, http.StatusOK)
		require.NoError(t, h.pending.Create(ctx, &models.PendingEmoji{
			DefaultModel: models.DefaultModel{ID: "req-1"},
			GuildId:      guildID.String(),
			Name:         "pog",
			Image:        []byte("png bytes"),
			ImageType:    string(discord.IconTypePNG),
			UploaderId:   userID.String(),
			ChannelId:    channelID.String(),
			MessageId:    "4242",
		}))

		h.queue.Resume(ctx, guildID)
		h.queue.Resume(ctx, guildID)
		require.Eventually(t, func() bool { return h.reactions.Waiting(4242) }, time.Second, 5*time.Millisecond)

		require.True(t, h.react(4242, modID, constants.Emojis.Approve))
		h.queue.Wait()

		assert.True(t, h.fake.HasEmoji(guildID, "pog"))
		assert.Equal(t, 1, h.fake.CallCount("create emoji"))
		assert.Empty(t, h.fake.Sent)
		assert.Zero(t, h.pending.Len())
	})

	t.Run("posts a missing prompt", func(t *testing.T) {
		h := setup(t, http.StatusOK)
		require.NoError(t, h.pending.Create(ctx, &models.PendingEmoji{
			DefaultModel: models.DefaultModel{ID: "req-2"},
			GuildId:      guildID.String(),
			Name:         "kek",
			Image:        []byte("png bytes"),
			ImageType:    string(discord.IconTypePNG),
			UploaderId:   userID.String(),
			ChannelId:    channelID.String(),
		}))

		h.queue.Resume(ctx, guildID)
		messageID := h.waitForPrompt(t)
		require.Len(t, h.fake.SentTo(channelID), 1)

		require.True(t, h.react(messageID, modID, constants.Emojis.Deny))
		h.queue.Wait()

		assert.False(t, h.fake.HasEmoji(guildID, "kek"))
		assert.Zero(t, h.pending.Len())
	})
}

// resumingPending runs a Resume for the guild while a request is being
// stored, the way a GuildReady arriving mid-flow would.
type resumingPending struct {
	*database.MemoryPending
	queue *Queue
}

func (p resumingPending) Create(ctx context.Context, req *models.PendingEmoji) error {
	if err := p.MemoryPending.Create(ctx, req); err != nil {
		return err
	}
	p.queue.Resume(ctx, guildID)

	return nil
}

func TestResumeDuringProcess(t *testing.T) {
	h := setup(t, http.StatusOK)
	h.queue.pending = resumingPending{MemoryPending: h.pending, queue: h.queue}
	pog := h.fake.AddEmoji(guildID, "pog", userID)

	done := h.process(context.Background(), pog)
	messageID := h.waitForPrompt(t)

	require.True(t, h.react(messageID, modID, constants.Emojis.Approve))
	r := awaitResult(t, done)
	h.queue.Wait()

	require.NoError(t, r.err)
	assert.Equal(t, Approved, r.state)
	assert.Len(t, h.fake.SentTo(channelID), 1)
	assert.Equal(t, 1, h.fake.CallCount("delete emoji"))
	assert.Equal(t, 1, h.fake.CallCount("create emoji"))
}

func TestHandleAdded(t *testing.T) {
	h := setup(t, http.StatusOK)
	admin := h.fake.AddEmoji(guildID, "ok", adminID)
	pog := h.fake.AddEmoji(guildID, "pog", userID)

	h.queue.HandleAdded(context.Background(), guildID, []discord.Emoji{admin, pog})
	messageID := h.waitForPrompt(t)

	require.True(t, h.react(messageID, modID, constants.Emojis.Approve))
	h.queue.Wait()

	assert.True(t, h.fake.HasEmoji(guildID, "ok"))
	assert.True(t, h.fake.HasEmoji(guildID, "pog"))
	assert.Len(t, h.fake.SentTo(channelID), 1)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "no queue", NoQueue.String())
	assert.Equal(t, "timed out", TimedOut.String())
	assert.False(t, Pending.Terminal())
	assert.True(t, Denied.Terminal())
}
