package common

import "os"

const serviceName = "timewheel"

// GetServiceName SERVICE_NAME
func GetServiceName() string {
	if name := os.Getenv("SERVICE_NAME"); name != "" {
		return name
	}
	return serviceName
}

// GetServiceInstance SERVICE_INSTANCE, fallback to hostname
func GetServiceInstance() string {
	if instance := os.Getenv("SERVICE_INSTANCE"); instance != "" {
		return instance
	}
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
