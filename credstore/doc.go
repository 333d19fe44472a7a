// Package credstore provides reference implementations of the
// [studyguard.Store] credential adapter.
//
// The contract that matters is SaveRefreshTokens: a compare-and-swap on
// the user's refresh-token list. [Memory] keeps everything in process
// and serves tests and examples; [Redis] keeps the token lists in Redis
// behind an atomic Lua script and delegates user/org lookups to a
// [Directory], matching deployments where account rows live in the
// application database but session state lives in Redis.
package credstore
