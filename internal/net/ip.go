package net

import (
	"log"
	"net"
	"strconv"
)

// OutgoingIP finds the local address other devices on the LAN should use
// to reach this host.
func OutgoingIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route out; look at the interfaces instead
		return localIPFallback()
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

func localIPFallback() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4().String(), nil
			}
		}
	}
	log.Println("[NET] no LAN address found, share links will use loopback")
	return "127.0.0.1", nil
}

// ShareURL is the bridge address printed for other devices.
func ShareURL(port int) string {
	ip, err := OutgoingIP()
	if err != nil {
		ip = "127.0.0.1"
	}
	return "ws://" + net.JoinHostPort(ip, strconv.Itoa(port)) + "/ws"
}
