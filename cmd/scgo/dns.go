//go:build !ios && !android && (amd64 || arm64)

package main

import (
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"github.com/google/uuid"
	"github.com/obinnaokechukwu/scgo"
	"github.com/obinnaokechukwu/scgo/network"
	"github.com/spf13/cobra"
)

// lookupService returns the service named by id, or the primary service
// when id is empty. Service identifiers are UUIDs.
func lookupService(s *scgo.Session, id string) (network.Service, error) {
	if id == "" {
		svc, ok := s.GlobalService()
		if !ok {
			return network.Service{}, scgo.ErrNoPrimaryService
		}
		return svc, nil
	}
	if _, err := uuid.Parse(id); err != nil {
		return network.Service{}, fmt.Errorf("invalid service id %q: %w", id, err)
	}
	svc, ok := s.ServiceByID(id)
	if !ok {
		return network.Service{}, fmt.Errorf("service %s not found", id)
	}
	return svc, nil
}

func formatDNS(d network.DNSSetting) string {
	if d.IsZero() {
		return Muted("none")
	}
	servers := make([]string, len(d.ServerAddresses))
	for i, a := range d.ServerAddresses {
		servers[i] = a.String()
	}
	return keyValues("    ",
		pair{"domain", orNone(d.DomainName, true)},
		pair{"servers", orNone(strings.Join(servers, ", "), true)},
	)
}

func dnsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dns [service-id]",
		Short: "Show the DNS configuration of a service (default: primary)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			var id string
			if len(args) > 0 {
				id = args[0]
			}
			svc, err := lookupService(s, id)
			if err != nil {
				return err
			}
			defer svc.Release()

			dns, err := s.DNS(svc)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, InfoMsg("%s %s", Bold(svc.Name()), Muted(svc.ID())))
			fmt.Fprintln(out, "  state:")
			fmt.Fprint(out, ensureNewline(formatDNS(dns.State)))
			fmt.Fprintln(out, "  setup:")
			fmt.Fprint(out, ensureNewline(formatDNS(dns.Setup)))
			return nil
		},
	}
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return "    " + s + "\n"
}

func setDNSCmd(a *app) *cobra.Command {
	var (
		serviceID string
		domain    string
		servers   []string
		clearAll  bool
	)
	cmd := &cobra.Command{
		Use:   "set-dns",
		Short: "Write the DNS setup of a service (default: primary)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			domainSet := cmd.Flags().Changed("domain")
			serversSet := cmd.Flags().Changed("server")
			if !clearAll && !domainSet && !serversSet {
				return errors.New("nothing to set: pass --domain, --server or --clear")
			}
			addrs := make([]netip.Addr, 0, len(servers))
			for _, s := range servers {
				addr, err := netip.ParseAddr(s)
				if err != nil {
					return fmt.Errorf("invalid server address %q: %w", s, err)
				}
				addrs = append(addrs, addr)
			}

			s, err := a.session()
			if err != nil {
				return err
			}
			defer s.Close()

			svc, err := lookupService(s, serviceID)
			if err != nil {
				return err
			}
			defer svc.Release()

			store := s.Store()
			switch {
			case clearAll:
				err = s.SetDNS(svc, network.DNSSetting{})
			case domainSet && serversSet:
				err = s.SetDNS(svc, network.DNSSetting{DomainName: domain, ServerAddresses: addrs})
			case domainSet:
				err = svc.SetDNSDomainName(store, domain)
			default:
				err = svc.SetDNSServerAddresses(store, addrs)
			}
			if err != nil {
				if scgo.IsAccessError(err) {
					return fmt.Errorf("%w (run as root)", err)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessMsg("DNS of %s updated.", Bold(svc.Name())))
			return nil
		},
	}
	cmd.Flags().StringVar(&serviceID, "service", "", "Service ID (default: primary service)")
	cmd.Flags().StringVar(&domain, "domain", "", "Default search domain; empty removes it")
	cmd.Flags().StringSliceVar(&servers, "server", nil, "DNS server address (repeatable); empty removes them")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove the DNS setup entirely")
	cmd.MarkFlagsMutuallyExclusive("clear", "domain")
	cmd.MarkFlagsMutuallyExclusive("clear", "server")
	return cmd
}
