package contexthelpers

type contextKey string

const sessionIDContextKey = contextKey("sessionID")
const currentPathContextKey = contextKey("currentPath")
const csrfTokenContextKey = contextKey("csrfToken")
const cspNonceContextKey = contextKey("cspNonce")
