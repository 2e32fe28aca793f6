package emoji

import (
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/exp/slices"
)

// Directory tracks the custom emojis of every guild the bot is in. It is the
// set of emojis the bot can post, so the replacer and the search commands
// resolve names against it.
type Directory struct {
	mu     sync.RWMutex
	guilds map[snowflake.ID]map[snowflake.ID]discord.Emoji
}

func NewDirectory() *Directory {
	return &Directory{guilds: map[snowflake.ID]map[snowflake.ID]discord.Emoji{}}
}

// Seed replaces the snapshot of a guild's emojis.
func (d *Directory) Seed(guildID snowflake.ID, emojis []discord.Emoji) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.guilds[guildID] = toSet(guildID, emojis)
}

// Update stores the guild's new emoji list and returns the emojis that weren't
// in the previous one. A guild that was never seeded reports no additions.
func (d *Directory) Update(guildID snowflake.ID, emojis []discord.Emoji) []discord.Emoji {
	d.mu.Lock()
	defer d.mu.Unlock()

	before, seeded := d.guilds[guildID]
	after := toSet(guildID, emojis)
	d.guilds[guildID] = after

	if !seeded {
		return nil
	}

	added := []discord.Emoji{}
	for id, e := range after {
		if _, ok := before[id]; !ok {
			added = append(added, e)
		}
	}

	sortByID(added)

	return added
}

// Forget drops a guild, for when the bot leaves it.
func (d *Directory) Forget(guildID snowflake.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.guilds, guildID)
}

// Remove drops a single emoji, usually right after the bot deleted it.
func (d *Directory) Remove(guildID snowflake.ID, emojiID snowflake.ID) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.guilds[guildID], emojiID)
}

// Add records an emoji the bot created itself so it is usable before the
// gateway reports it.
func (d *Directory) Add(e discord.Emoji) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if set, ok := d.guilds[e.GuildID]; ok {
		set[e.ID] = e
	}
}

// Lookup finds an available emoji by name. The preferred guild is searched
// first, then every other guild in a stable order. Exact matches win over
// case-insensitive ones.
func (d *Directory) Lookup(name string, preferGuild snowflake.ID) (discord.Emoji, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	order := d.guildOrder(preferGuild)

	for _, match := range []func(string) bool{
		func(n string) bool { return n == name },
		func(n string) bool { return strings.EqualFold(n, name) },
	} {
		for _, guildID := range order {
			for _, e := range sortedEmojis(d.guilds[guildID]) {
				if e.Available && match(e.Name) {
					return e, true
				}
			}
		}
	}

	return discord.Emoji{}, false
}

// Get returns an emoji by id from any guild.
func (d *Directory) Get(emojiID snowflake.ID) (discord.Emoji, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, set := range d.guilds {
		if e, ok := set[emojiID]; ok {
			return e, true
		}
	}

	return discord.Emoji{}, false
}

func (d *Directory) Guild(guildID snowflake.ID) []discord.Emoji {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return sortedEmojis(d.guilds[guildID])
}

// Search lists available emojis whose name contains query, ignoring case,
// sorted by name.
func (d *Directory) Search(query string) []discord.Emoji {
	query = strings.ToLower(query)

	d.mu.RLock()
	defer d.mu.RUnlock()

	results := []discord.Emoji{}
	for _, set := range d.guilds {
		for _, e := range set {
			if e.Available && strings.Contains(strings.ToLower(e.Name), query) {
				results = append(results, e)
			}
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Name == results[j].Name {
			return results[i].ID < results[j].ID
		}
		return results[i].Name < results[j].Name
	})

	return results
}

func (d *Directory) Random() (discord.Emoji, bool) {
	all := d.Search("")
	if len(all) == 0 {
		return discord.Emoji{}, false
	}

	return all[rand.Intn(len(all))], true
}

func (d *Directory) GuildCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.guilds)
}

func (d *Directory) EmojiCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, set := range d.guilds {
		n += len(set)
	}

	return n
}

func (d *Directory) guildOrder(preferGuild snowflake.ID) []snowflake.ID {
	ids := make([]snowflake.ID, 0, len(d.guilds))
	for id := range d.guilds {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	if _, ok := d.guilds[preferGuild]; !ok {
		return ids
	}

	order := make([]snowflake.ID, 0, len(ids))
	order = append(order, preferGuild)
	for _, id := range ids {
		if id != preferGuild {
			order = append(order, id)
		}
	}

	return order
}

func toSet(guildID snowflake.ID, emojis []discord.Emoji) map[snowflake.ID]discord.Emoji {
	set := make(map[snowflake.ID]discord.Emoji, len(emojis))
	for _, e := range emojis {
		// gateway payloads don't always carry the guild id
		e.GuildID = guildID
		set[e.ID] = e
	}

	return set
}

func sortedEmojis(set map[snowflake.ID]discord.Emoji) []discord.Emoji {
	emojis := make([]discord.Emoji, 0, len(set))
	for _, e := range set {
		emojis = append(emojis, e)
	}
	sortByID(emojis)

	return emojis
}

func sortByID(emojis []discord.Emoji) {
	slices.SortFunc(emojis, func(a, b discord.Emoji) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
