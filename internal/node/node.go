// Package node names the shape every runnable link node exposes to
// tooling: a stable identity and the HTTP router carrying its local API.
package node

import "github.com/gin-gonic/gin"

type Node interface {
	NodeID() string
	Kind() string
	HTTPRouter() *gin.Engine
}
