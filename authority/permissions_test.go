package authority_test

import (
	"shipflow/authority"
	"testing"

	. "github.com/onsi/gomega"
)

func TestHasRole(t *testing.T) {
	RegisterTestingT(t)

	t.Run("role matching is case insensitive", func(t *testing.T) {
		perms := authority.Permissions{"workflow:operate", "System:Admin"}
		Expect(perms.HasRole("workflow:operate")).To(BeTrue())
		Expect(perms.HasRole("WORKFLOW:OPERATE")).To(BeTrue())
		Expect(perms.HasRole("system:admin")).To(BeTrue())
		Expect(perms.HasRole("other")).To(BeFalse())
		Expect(authority.Permissions(nil).HasRole("workflow:operate")).To(BeFalse())
	})
}

func TestHasGlobalViewRole(t *testing.T) {
	RegisterTestingT(t)

	t.Run("any system scoped permission grants global view", func(t *testing.T) {
		Expect(authority.Permissions{"system:admin"}.HasGlobalViewRole()).To(BeTrue())
		Expect(authority.Permissions{"SYSTEM:view"}.HasGlobalViewRole()).To(BeTrue())
		Expect(authority.Permissions{"workflow:operate"}.HasGlobalViewRole()).To(BeFalse())
		Expect(authority.Permissions{}.HasGlobalViewRole()).To(BeFalse())
	})
}
