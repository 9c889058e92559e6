package api

import (
	"github.com/gin-gonic/gin"
)

// Module is a self-contained feature of the application. Each module
// migrates its own storage and registers its own routes when loaded.
type Module interface {
	Name() string
	Load(e *gin.Engine)
}
