package utils

import "github.com/samber/lo"

// HasAnyRole reports whether the actor holds at least one of the required
// roles. An empty requirement allows nobody.
func HasAnyRole(actorRoleIDs, requiredRoleIDs []string) bool {
	return len(lo.Intersect(actorRoleIDs, requiredRoleIDs)) > 0
}
