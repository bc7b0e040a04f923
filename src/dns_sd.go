package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the monitor using DNS-SD
 *
 * Description:
 *
 *     A beacon on a test bench is usually headless.  Announcing the
 *     monitor means a browser or a Prometheus instance with mDNS
 *     discovery can find it without anyone looking up an address.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package, no
 *     system daemon needed.
 */

import (
	"context"
	"os"
	"strings"

	"github.com/brutella/dnssd"
)

const DNS_SD_SERVICE = "_beacon-mon._tcp"

/* Get a default service name to publish. By default,
 * "Beacon on <hostname>", or just "Beacon" if hostname cannot
 * be obtained.
 */
func dns_sd_default_service_name() string {
	var hostname, hostnameErr = os.Hostname()
	if hostnameErr != nil {
		return "Beacon"
	}

	// on some systems, an FQDN is returned; remove domain part
	hostname, _, _ = strings.Cut(hostname, ".")

	return "Beacon on " + hostname
}

// dns_sd_announce keeps responding until ctx is done.  Failures are
// logged and otherwise ignored; the monitor works without it.
func dns_sd_announce(ctx context.Context, name string, port int) {
	if name == "" {
		name = dns_sd_default_service_name()
	}

	var cfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNS_SD_SERVICE,
		Port: port,
	}

	var sv, svErr = dnssd.NewService(cfg)
	if svErr != nil {
		logger.Error("DNS-SD: Failed to create service", "err", svErr)
		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		logger.Error("DNS-SD: Failed to create responder", "err", rpErr)
		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		logger.Error("DNS-SD: Failed to add service", "err", addErr)
		return
	}

	logger.Info("DNS-SD: Announcing monitor", "port", port, "name", name)

	go func() {
		var respondErr = rp.Respond(ctx)
		if respondErr != nil && ctx.Err() == nil {
			logger.Error("DNS-SD: Responder error", "err", respondErr)
		}
	}()
}
