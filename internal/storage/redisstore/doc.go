// Package redisstore provides the Redis-backed token store.
//
// Records are stored with SET/GET under "honeytoken:{token_id}" as strict
// JSON; alerts go out with PUBLISH. Update uses WATCH/MULTI/EXEC so that two
// processes sharing one Redis never lose an access.
//
// The underlying go-redis client pools connections and is safe for
// concurrent use; one Store is built per process and closed at shutdown.
package redisstore
