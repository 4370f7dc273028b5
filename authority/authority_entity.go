package authority

import "strings"

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasGlobalViewRole() bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), "system:") {
			return true
		}
	}
	return false
}
