package ping

import (
	"fmt"
	"net"
)

const maxExpandedHosts = 1 << 16

// ExpandCIDR lists the usable host addresses of an IPv4 subnet (network
// and broadcast addresses excluded), e.g. 192.168.1.0/24 yields
// 192.168.1.1 through 192.168.1.254.
func ExpandCIDR(cidr string) ([]string, error) {
	ip, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("parse subnet: %w", err)
	}
	if ip.To4() == nil {
		return nil, fmt.Errorf("subnet %q is not IPv4", cidr)
	}

	ones, bits := network.Mask.Size()
	total := 1 << (bits - ones)
	if total > maxExpandedHosts {
		return nil, fmt.Errorf("subnet %q expands to %d hosts, refusing to sweep more than %d", cidr, total, maxExpandedHosts)
	}

	hosts := make([]string, 0, total)
	for addr := network.IP.Mask(network.Mask); network.Contains(addr); addr = nextIP(addr) {
		hosts = append(hosts, addr.String())
	}

	// Drop the network and broadcast addresses for subnets that have
	// them.
	if len(hosts) > 2 {
		hosts = hosts[1 : len(hosts)-1]
	}

	return hosts, nil
}

// LocalSubnet guesses the local /24 from the interface used for
// outbound traffic. The dial never sends a packet; it only resolves a
// route.
func LocalSubnet() (string, error) {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "", fmt.Errorf("resolve local address: %w", err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP.To4() == nil {
		return "", fmt.Errorf("local address %v is not IPv4", conn.LocalAddr())
	}

	ip := addr.IP.To4()
	return fmt.Sprintf("%d.%d.%d.0/24", ip[0], ip[1], ip[2]), nil
}

func nextIP(ip net.IP) net.IP {
	next := make(net.IP, len(ip))
	copy(next, ip)
	for i := len(next) - 1; i >= 0; i-- {
		next[i]++
		if next[i] != 0 {
			break
		}
	}

	return next
}
