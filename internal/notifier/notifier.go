package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitcycle/internal/constants"
)

// Sender delivers a single notification text.
type Sender interface {
	Notify(text string) error
}

// Endpoint is the tray app's local webhook as announced in its lockfile.
type Endpoint struct {
	Port   int
	PID    int
	Secret string
}

func (e Endpoint) URL() string {
	return "http://127.0.0.1:" + strconv.Itoa(e.Port)
}

// ParseLockfile parses the tray lockfile format "port|pid|secret".
func ParseLockfile(data []byte) (Endpoint, error) {
	parts := strings.Split(strings.TrimSpace(string(data)), "|")
	if len(parts) != 3 {
		return Endpoint{}, errors.New("lockfile is malformed")
	}
	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid port %q in lockfile", parts[0])
	}
	if port < 1 || port > 65535 {
		return Endpoint{}, fmt.Errorf("port %d in lockfile is outside 1-65535", port)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || pid < 1 {
		return Endpoint{}, fmt.Errorf("invalid process ID %q in lockfile", parts[1])
	}
	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return Endpoint{}, errors.New("secret in lockfile is empty")
	}
	return Endpoint{Port: port, PID: pid, Secret: secret}, nil
}

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// Notifier posts reminders to the companion tray app.
type Notifier struct {
	client      *http.Client
	configDir   func() (string, error)
	findProcess func(int) (ps.Process, error)
}

func New() *Notifier {
	return &Notifier{
		client:      &http.Client{Timeout: 5 * time.Second},
		configDir:   os.UserConfigDir,
		findProcess: ps.FindProcess,
	}
}

// TrayDir returns the directory holding the tray lockfile. The tray's
// settings.json may move it through settings.lockfile_dir.
func (n *Notifier) TrayDir() (string, error) {
	base, err := n.configDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(base, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var cfg struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if json.Unmarshal(data, &cfg) == nil && cfg.Settings.LockfileDir != "" {
		return cfg.Settings.LockfileDir, nil
	}
	return dir, nil
}

// Discover reads the lockfile and checks that its PID is a running tray app.
func (n *Notifier) Discover() (Endpoint, error) {
	dir, err := n.TrayDir()
	if err != nil {
		return Endpoint{}, err
	}
	data, err := os.ReadFile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return Endpoint{}, fmt.Errorf("%s is not running", constants.TrayExecutablePrefix)
	}
	ep, err := ParseLockfile(data)
	if err != nil {
		return Endpoint{}, err
	}

	proc, err := n.findProcess(ep.PID)
	if err != nil || proc == nil {
		return Endpoint{}, fmt.Errorf("%s process %d is not running", constants.TrayExecutablePrefix, ep.PID)
	}
	if !strings.HasPrefix(proc.Executable(), constants.TrayExecutablePrefix) {
		return Endpoint{}, fmt.Errorf("process %d is %s, not %s", ep.PID, proc.Executable(), constants.TrayExecutablePrefix)
	}
	return ep, nil
}

// Notify delivers text, retrying once after a short delay.
func (n *Notifier) Notify(text string) error {
	ep, err := n.Discover()
	if err != nil {
		return err
	}
	payload := WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs}
	if err = n.post(ep, payload); err != nil {
		time.Sleep(constants.NotifyRetryDelay)
		err = n.post(ep, payload)
	}
	return err
}

func (n *Notifier) post(ep Endpoint, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, ep.URL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Habitcycle-Secret", ep.Secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("tray rejected notification (%d): %s", res.StatusCode, strings.TrimSpace(string(msg)))
}

// Printer writes notifications to W instead of sending them.
type Printer struct {
	W io.Writer
}

func (p Printer) Notify(text string) error {
	_, err := fmt.Fprintln(p.W, "[DryRun] "+text)
	return err
}
