package authz

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Request is a single authorization question. Domain is the church identifier
// the object belongs to ("*" for platform-wide objects); Subject is the
// caller's global role.
type Request struct {
	Subject string
	Domain  string
	Object  string
	Action  string
}

type Config struct {
	ModelPath  string
	PolicyPath string
	Logger     *logrus.Logger
}

func (c Config) validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("authz: model path is required")
	}
	if c.PolicyPath == "" {
		return fmt.Errorf("authz: policy path is required")
	}
	return nil
}

// ObjectName builds a namespaced object identifier, e.g. "church/campuses".
func ObjectName(module, resource string) string {
	return module + "/" + resource
}
