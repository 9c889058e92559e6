package modules

import (
	"github.com/bookclub/bookpoll/modules/polls"
)

func init() {
	Add(&polls.Module{})
}
