// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package job

import (
	"github.com/shirou/gopsutil/v4/host"
)

// hostInfoFn is the function used to get host info (injectable for testing).
var hostInfoFn = host.Info

// UnknownHostname is used when the system hostname cannot be determined.
const UnknownHostname = "unknown"

// HostInfo describes the machine a worker runs on.
type HostInfo struct {
	Hostname        string `json:"hostname"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
	Arch            string `json:"arch,omitempty"`
}

// GetWorkerHostname returns the hostname a worker registers under.
// A configured hostname wins; otherwise the system hostname reported by
// gopsutil is used, falling back to "unknown".
func GetWorkerHostname(
	configuredHostname string,
) string {
	if configuredHostname != "" {
		return configuredHostname
	}

	info, err := hostInfoFn()
	if err != nil || info == nil || info.Hostname == "" {
		return UnknownHostname
	}

	return info.Hostname
}

// GetHostInfo returns platform details for the registry entry. Fields are
// left empty when gopsutil cannot read them.
func GetHostInfo(
	configuredHostname string,
) HostInfo {
	hi := HostInfo{Hostname: GetWorkerHostname(configuredHostname)}

	info, err := hostInfoFn()
	if err != nil || info == nil {
		return hi
	}

	hi.Platform = info.Platform
	hi.PlatformVersion = info.PlatformVersion
	hi.KernelVersion = info.KernelVersion
	hi.Arch = info.KernelArch

	return hi
}
