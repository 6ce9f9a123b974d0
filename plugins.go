package greyfilter

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"plugin"

	log "github.com/sirupsen/logrus"
)

const (
	pluginVarName     string = "Hook"
	defaultPluginPath string = "/opt/greyfilter/plugins"
	TimeFormat        string = "2006-01-02T15:04:05.999999"
)

// Plugins loads hooks from shared objects exporting a Hook variable.
type Plugins struct {
	path  string
	hooks []Hook
}

func (p *Plugins) isDirExists() bool {
	_, err := os.Stat(p.path)
	return err == nil
}

func (p *Plugins) setPath() {
	p.path = defaultPluginPath
	path := os.Getenv("PLUGIN_PATH")
	if path != "" {
		p.path = path
	}
}

func (p *Plugins) lookup(name string) (Hook, error) {
	pp := path.Join(p.path, name)
	plug, err := plugin.Open(pp)
	if err != nil {
		return nil, err
	}

	symbol, err := plug.Lookup(pluginVarName)
	if err != nil {
		return nil, err
	}

	hook, ok := symbol.(Hook)
	if !ok {
		return nil, fmt.Errorf("%s does not implement Hook", pluginVarName)
	}

	log.WithField("plugin", pp).Info("Loaded plugin")
	return hook, nil
}

func (p *Plugins) load() error {
	p.setPath()

	if !p.isDirExists() {
		return nil
	}

	files, err := os.ReadDir(p.path)
	if err != nil {
		return err
	}

	for _, f := range files {
		if !f.Type().IsRegular() {
			continue
		}
		n := f.Name()
		if filepath.Ext(n) != ".so" {
			continue
		}

		plug, err := p.lookup(n)
		if err != nil {
			log.WithField("plugin", n).WithError(err).Warn("Couldn't load plugin")
			continue
		}

		plug.AfterInit()
		p.hooks = append(p.hooks, plug)
	}

	return nil
}
