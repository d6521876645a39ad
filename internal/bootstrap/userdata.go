package bootstrap

import (
	"fmt"

	"github.com/deepdefend/bkpops/internal/config"
)

// userDataScript is the cloud-init payload template. It pulls the
// agent-bootstrap one-shot from the server's unauthenticated bootstrap
// channel and hands over; everything after that is the injector's job.
const userDataScript = `#!/bin/bash
set -euo pipefail

curl -fsSL http://%[1]s:%[2]d/bootstrap/agent-bootstrap -o /usr/local/bin/agent-bootstrap
chmod 0755 /usr/local/bin/agent-bootstrap
/usr/local/bin/agent-bootstrap --server %[1]s --org %[3]s --install-dir %[4]s
`

// UserData renders the first-boot script embedded into the instance's
// user data at provisioning time.
func UserData(cfg config.BootstrapConfig) string {
	return fmt.Sprintf(userDataScript,
		cfg.ServerAddress, cfg.Port, cfg.Organization, DefaultInstallDir)
}
