package modules

import (
	"github.com/bookclub/bookpoll/modules/auth"
)

func init() {
	Add(&auth.Module{})
}
