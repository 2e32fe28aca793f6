package langs

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/Jeffail/gabs/v2"
	"github.com/rs/zerolog/log"
)

const DefaultLang = "en-US"

//go:embed packs/*.json
var packFiles embed.FS

var _packs = map[string]*gabs.Container{}

type CommandPack struct {
	langPack LangPack
	commands []string
}

func (cp *CommandPack) SubCommand(c string) *CommandPack {
	cp.commands = append(cp.commands, c)

	return cp
}

func (cp *CommandPack) Getf(k string, a ...any) string {
	return fmt.Sprintf(cp.Get(k), a...)
}

func (cp *CommandPack) Get(k string) string {
	path := append(append([]string{}, cp.commands...), k)

	t, ok := cp.langPack._container.S(path...).Data().(string)
	if !ok {
		return cp.langPack.NotFoundText
	}

	return t
}

type LangPack struct {
	_container   *gabs.Container
	NotFoundText string
}

func (p *LangPack) Command(c string) *CommandPack {
	return &CommandPack{langPack: *p, commands: []string{"commands", c}}
}

func (p *LangPack) Event(e string) *CommandPack {
	return &CommandPack{langPack: *p, commands: []string{"events", e}}
}

// Pack returns the text pack for a language, falling back to the default one.
func Pack(c string) *LangPack {
	pack := _packs[c]
	if pack == nil {
		pack = _packs[DefaultLang]
	}
	if pack == nil {
		log.Panic().Msgf(`Cannot find "%v" lang pack, was Load called?`, c)
	}

	notFound, ok := pack.S("notFound").Data().(string)
	if !ok {
		log.Panic().Msgf(`Cannot find "notFound" text in lang pack "%v"`, c)
	}

	return &LangPack{_container: pack, NotFoundText: notFound}
}

func Default() *LangPack {
	return Pack(DefaultLang)
}

func Load() error {
	files, err := fs.ReadDir(packFiles, "packs")
	if err != nil {
		return fmt.Errorf("error loading lang packs: %w", err)
	}

	for _, file := range files {
		data, err := packFiles.ReadFile("packs/" + file.Name())
		if err != nil {
			return fmt.Errorf(`error loading lang pack "%v": %w`, file.Name(), err)
		}

		parsed, err := gabs.ParseJSON(data)
		if err != nil {
			return fmt.Errorf(`error parsing lang pack "%v" json: %w`, file.Name(), err)
		}

		_packs[strings.TrimSuffix(file.Name(), ".json")] = parsed
	}

	return nil
}
