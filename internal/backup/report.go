package backup

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// The backup command runs as a separate process; it reports each finished run to the
// service over a unix socket so the numbers end up in the service's Prometheus metrics.
// Message format: "entries::<n>||duration::<seconds>".

// removeStaleSocket deletes a socket file left behind by a service that did not shut
// down cleanly. A socket somebody still listens on, or a non-socket file, is kept.
func removeStaleSocket(socket string) error {
	info, err := os.Lstat(socket)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat unix socket %s: %w", socket, err)
	}
	if info.Mode()&os.ModeSocket == 0 {
		return fmt.Errorf("unix socket path %s exists and is not a socket", socket)
	}

	conn, err := net.DialTimeout("unix", socket, time.Second)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("unix socket %s is in use", socket)
	}

	log.Warnf("removing stale backup report unix socket: %s", socket)
	if err := os.Remove(socket); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale unix socket %s: %w", socket, err)
	}
	return nil
}

// ReportListenerSetup accepts backup reports on socketAddrDir/socketFileName until ctx is done.
func ReportListenerSetup(
	ctx context.Context,
	socketAddrDir, socketFileName string,
	metricsManager *metrics.Manager,
) (net.Addr, error) {
	socket := filepath.Join(socketAddrDir, socketFileName)
	if err := removeStaleSocket(socket); err != nil {
		return nil, err
	}

	listener, err := net.Listen("unix", socket)
	if err != nil {
		return nil, fmt.Errorf("binding to unix socket %s: %w", socket, err)
	}

	if err := os.Chmod(socket, os.ModeSocket|0666); err != nil {
		_ = listener.Close()
		return nil, err
	}

	go func() {
		<-ctx.Done()
		log.Debugln("backup report listener context done, closing listener")
		_ = listener.Close()
	}()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
				default:
					log.Errorf("backup report listener conn accept: %s", err)
				}
				return
			}

			if err := conn.SetDeadline(time.Now().Add(time.Minute)); err != nil {
				log.Errorf("backup report conn, set deadline: %s", err)
				_ = conn.Close()
				continue
			}

			go handleReportConn(conn, metricsManager)
		}
	}()

	return listener.Addr(), nil
}

func handleReportConn(conn net.Conn, metricsManager *metrics.Manager) {
	defer func() { _ = conn.Close() }()

	buf := make([]byte, 1024)
	n, err := conn.Read(buf)
	if err != nil {
		return
	}

	message := string(buf[:n])
	log.Infof("backup report received: %s", message)

	entries, duration, err := parseReport(message)
	if err != nil {
		log.Errorf("backup report conn: %s", err)
		return
	}

	metricsManager.CounterEntriesBackedUp.Add(float64(entries))
	metricsManager.HistBackupDuration.Observe(duration)

	if _, err := conn.Write([]byte("ok")); err != nil {
		log.Errorf("backup report conn, send response: %s", err)
	}
}

func formatReport(entries int, duration time.Duration) string {
	return fmt.Sprintf("entries::%d||duration::%f", entries, duration.Seconds())
}

func parseReport(message string) (int, float64, error) {
	parts := strings.Split(message, "||")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid message received: %s", message)
	}

	entriesInfo := strings.Split(parts[0], "::")
	if len(entriesInfo) != 2 || entriesInfo[0] != "entries" {
		return 0, 0, fmt.Errorf("invalid entries info received: %s", parts[0])
	}
	entries, err := strconv.Atoi(entriesInfo[1])
	if err != nil || entries < 0 {
		return 0, 0, fmt.Errorf("invalid entries count: %s", entriesInfo[1])
	}

	durationInfo := strings.Split(parts[1], "::")
	if len(durationInfo) != 2 || durationInfo[0] != "duration" {
		return 0, 0, fmt.Errorf("invalid duration info received: %s", parts[1])
	}
	duration, err := strconv.ParseFloat(durationInfo[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid duration: %w", err)
	}

	return entries, duration, nil
}

// SendReport tells the running service about a finished backup. It waits for the ack.
func SendReport(ctx context.Context, socketAddrDir, socketFileName string, result *Result) error {
	socket := filepath.Join(socketAddrDir, socketFileName)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", socket)
	if err != nil {
		return fmt.Errorf("dial %s: %w", socket, err)
	}
	defer func() { _ = conn.Close() }()

	if err := conn.SetDeadline(time.Now().Add(10 * time.Second)); err != nil {
		return err
	}

	if _, err := conn.Write([]byte(formatReport(result.Entries, result.Duration))); err != nil {
		return fmt.Errorf("send report: %w", err)
	}

	buf := make([]byte, 16)
	n, err := conn.Read(buf)
	if err != nil {
		return fmt.Errorf("read ack: %w", err)
	}
	if ack := string(buf[:n]); ack != "ok" {
		return fmt.Errorf("unexpected ack: %s", ack)
	}

	return nil
}
