package mqtt

import (
	"fmt"

	"github.com/daemonp/unii2mqtt/internal/types"
	"github.com/daemonp/unii2mqtt/internal/util"
)

type Topics struct {
	prefix string
}

func NewTopics(prefix string) *Topics {
	return &Topics{prefix: prefix}
}

func (t *Topics) Status() string {
	return fmt.Sprintf("%s/status", t.prefix)
}

func (t *Topics) Config() string {
	return fmt.Sprintf("%s/config", t.prefix)
}

func (t *Topics) Section(section *types.Section) string {
	return fmt.Sprintf("%s/section/%s", t.prefix, util.Slugify(section.Name))
}

func (t *Topics) SectionCommand(section *types.Section) string {
	return fmt.Sprintf("%s/section/%s/command", t.prefix, util.Slugify(section.Name))
}

func (t *Topics) Input(input *types.Input) string {
	return fmt.Sprintf("%s/input/%s", t.prefix, util.Slugify(input.Name))
}

func (t *Topics) InputCommand(input *types.Input) string {
	return fmt.Sprintf("%s/input/%s/command", t.prefix, util.Slugify(input.Name))
}

func (t *Topics) Output(output *types.Output) string {
	return fmt.Sprintf("%s/output/%s", t.prefix, util.Slugify(output.Name))
}

func (t *Topics) DeviceStatus() string {
	return fmt.Sprintf("%s/device_status", t.prefix)
}

func (t *Topics) Log() string {
	return fmt.Sprintf("%s/log", t.prefix)
}
