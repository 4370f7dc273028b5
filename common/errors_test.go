package common_test

import (
	"net/http"
	"os"
	"shipflow/common"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Errors", func() {
	Describe("ErrBadParam", func() {
		Describe("Error", func() {
			It("should return default message if cause is nil", func() {
				err := common.ErrBadParam{}
				Expect(err.Error()).To(Equal("common.bad_param"))
			})
			It("should invoke the Error() function of cause property if cause is not nil", func() {
				err := common.ErrBadParam{Cause: common.ErrForbidden}
				Expect(err.Error()).To(Equal("forbidden"))
			})
		})

		Describe("Respond", func() {
			It("should carry the cause message into the response detail", func() {
				err := common.ErrBadParam{Cause: common.ErrForbidden}
				detail := err.Respond()
				Expect(detail.Status).To(Equal(http.StatusBadRequest))
				Expect(detail.Code).To(Equal("common.bad_param"))
				Expect(detail.Message).To(Equal("forbidden"))
				Expect(detail.Data).To(BeNil())
			})
			It("should fall back to the code when cause is nil", func() {
				err := common.ErrBadParam{}
				Expect(err.Respond().Message).To(Equal("common.bad_param"))
			})
		})
	})
})

var _ = Describe("ServiceInfo", func() {
	Describe("GetServiceName", func() {
		It("should prefer the SERVICE_NAME environment variable", func() {
			Expect(os.Setenv("SERVICE_NAME", "shipflow-staging")).To(BeNil())
			defer os.Unsetenv("SERVICE_NAME")
			Expect(common.GetServiceName()).To(Equal("shipflow-staging"))
		})
		It("should fall back to the default name", func() {
			Expect(os.Unsetenv("SERVICE_NAME")).To(BeNil())
			Expect(common.GetServiceName()).To(Equal("shipflow"))
		})
	})

	Describe("GetServiceInstance", func() {
		It("should prefer the SERVICE_INSTANCE environment variable", func() {
			Expect(os.Setenv("SERVICE_INSTANCE", "shipflow-0")).To(BeNil())
			defer os.Unsetenv("SERVICE_INSTANCE")
			Expect(common.GetServiceInstance()).To(Equal("shipflow-0"))
		})
		It("should fall back to the hostname", func() {
			Expect(os.Unsetenv("SERVICE_INSTANCE")).To(BeNil())
			hostname, err := os.Hostname()
			Expect(err).To(BeNil())
			Expect(common.GetServiceInstance()).To(Equal(hostname))
		})
	})
})
