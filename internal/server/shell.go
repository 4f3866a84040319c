package server

import (
	"context"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/wraith-app/wraith/internal/buildinfo"
	"github.com/wraith-app/wraith/internal/commands"
	"github.com/wraith-app/wraith/internal/deeplink"
	"github.com/wraith-app/wraith/internal/eventbus"
	"github.com/wraith-app/wraith/internal/shell"
	"github.com/wraith-app/wraith/internal/tray"
)

// TrayPoster queues events on the tray session loop.
type TrayPoster interface {
	Post(ev tray.Event) bool
}

// Deps are the shared services the Shell service exposes.
type Deps struct {
	Commands *commands.Handlers
	Links    *deeplink.Dispatcher
	Windows  *shell.Registry
	Bus      *eventbus.Bus
	Tray     TrayPoster
	// Port reports the listening port for GetStatus.
	Port func() int
}

// Service implements ShellServer on top of the application services.
type Service struct {
	deps      Deps
	startedAt time.Time
}

// NewService creates the Shell service.
func NewService(deps Deps) *Service {
	return &Service{deps: deps, startedAt: time.Now()}
}

func (s *Service) GetStatus(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	port := 0
	if s.deps.Port != nil {
		port = s.deps.Port()
	}
	_, dropped := s.deps.Links.Stats()
	return newStruct(map[string]any{
		"version":       buildinfo.Version,
		"pid":           os.Getpid(),
		"port":          port,
		"started_at":    s.startedAt.UTC().Format(time.RFC3339),
		"subscribers":   s.deps.Bus.Subscribers(),
		"scheme":        s.deps.Links.Scheme(),
		"links_dropped": dropped,
	})
}

func (s *Service) GetSystemInfo(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	info := s.deps.Commands.GetSystemInfo()
	return newStruct(map[string]any{
		"platform": info.Platform,
		"arch":     info.Arch,
		"family":   info.Family,
	})
}

func (s *Service) CheckForUpdates(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	ok, err := s.deps.Commands.CheckForUpdates(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *Service) InstallUpdate(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.deps.Commands.InstallUpdate(ctx); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) GetUpdateState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	p := s.deps.Commands.UpdateState().Payload()
	p["current_version"] = s.deps.Commands.CurrentVersion()
	return newStruct(p)
}

func (s *Service) ShowNotification(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	fields := req.GetFields()
	title := fields["title"].GetStringValue()
	body := fields["body"].GetStringValue()
	if err := s.deps.Commands.ShowNotification(title, body); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *Service) OpenLink(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	ev, err := s.deps.Links.OnLink(req.GetValue())
	if err != nil {
		return nil, toStatus(err)
	}
	return newStruct(ev.Payload())
}

// SetVisibility is called by a front-end whose main window was shown or
// closed by the user, so the tray session tracks the change.
func (s *Service) SetVisibility(ctx context.Context, req *wrapperspb.BoolValue) (*emptypb.Empty, error) {
	kind := tray.CommandHide
	if req.GetValue() {
		kind = tray.CommandShow
	}
	if s.deps.Tray == nil || !s.deps.Tray.Post(tray.CommandEvent{Command: tray.Command{Kind: kind}}) {
		return nil, status.Error(codes.Unavailable, "tray session not accepting events")
	}
	return &emptypb.Empty{}, nil
}

// Attach registers the caller as the front-end of a window and streams the
// window's control requests and every bus event until the caller leaves or
// another front-end takes the window over.
func (s *Service) Attach(req *wrapperspb.StringValue, stream AttachStream) error {
	name := req.GetValue()
	if name == "" {
		name = shell.MainWindow
	}

	sub := s.deps.Bus.Subscribe(0)
	defer sub.Close()
	w := s.deps.Windows.Attach(name)
	defer s.deps.Windows.Detach(w)

	log.Infof("[server] Front-end attached to window %q", name)
	defer log.Infof("[server] Front-end left window %q", name)

	ctx := stream.Context()
	for {
		var ev eventbus.Event
		select {
		case <-ctx.Done():
			return nil
		case <-w.Done():
			return status.Errorf(codes.Aborted, "window %q attached by another front-end", name)
		case ev = <-w.Events():
		case e, ok := <-sub.Events():
			if !ok {
				return nil
			}
			ev = e
		}

		msg, err := eventToStruct(ev)
		if err != nil {
			log.Warnf("[server] Cannot encode %s event: %v", ev.Name, err)
			continue
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
}

func eventToStruct(ev eventbus.Event) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":         ev.ID,
		"name":       ev.Name,
		"emitted_at": ev.EmittedAt.Format(time.RFC3339Nano),
		"payload":    ev.Payload,
	})
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}
