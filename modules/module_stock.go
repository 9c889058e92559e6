package modules

import (
	"github.com/bookclub/bookpoll/modules/stock"
)

func init() {
	Add(&stock.Module{})
}
