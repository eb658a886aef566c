package main

import (
	"context"
	"flag"
	"net"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/uartframe/pkg/bridge"
	"github.com/robotalks/uartframe/pkg/bridge/mqtt"
	"github.com/robotalks/uartframe/pkg/bridge/stream"
	"github.com/robotalks/uartframe/pkg/bridge/websocket"
	"github.com/robotalks/uartframe/pkg/env"
	fx "github.com/robotalks/uartframe/pkg/framework"
	"github.com/robotalks/uartframe/pkg/metrics"
)

var tcpListen string

func init() {
	env.SetupFlags()
	flag.StringVar(&tcpListen, "tcp", tcpListen, "Listen address for length-prefixed TCP clients.")
}

func main() {
	conf, err := env.Parse()
	if err != nil {
		glog.Exit(err)
	}
	defer glog.Flush()

	port, err := conf.OpenPort()
	if err != nil {
		glog.Exit(err)
	}
	defer port.Close()

	b := bridge.New(port)
	b.SerialObserver = metrics.NewLinkObserver("serial")
	runner := fx.NewServiceRunner().HandleSignals()
	mux := http.NewServeMux()

	if conf.MQTTURL != "" {
		q, err := mqtt.NewQueueFromURL(conf.MQTTURL, conf.ClientID)
		if err != nil {
			glog.Exitf("invalid MQTT URL: %v", err)
		}
		if err = q.Connect(); err != nil {
			glog.Exitf("connect MQTT: %v", err)
		}
		defer q.Close()
		b.AddUpstream("mqtt", mqtt.NewPacketReadWriter(q).ForBridge())
	}

	if conf.WSListen != "" || tcpListen != "" {
		hub := bridge.NewHub()
		defer hub.Close()
		b.AddUpstream("hub", hub)
		if conf.WSListen != "" {
			mux.Handle("/frames", websocket.Handler(hub))
			serveHTTP(runner, "websocket", conf.WSListen, mux)
		}
		if tcpListen != "" {
			ln, err := net.Listen("tcp", tcpListen)
			if err != nil {
				glog.Exit(err)
			}
			runner.Go(fx.NamedRun("tcp", fx.RunFunc(func(ctx context.Context) error {
				return fx.RunWithContextCloser(ctx, ln, func() error {
					return stream.Serve(ln, hub)
				})
			})))
		}
	}

	if conf.MetricsListen != "" {
		if conf.MetricsListen == conf.WSListen {
			mux.Handle("/metrics", metrics.Handler())
		} else {
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", metrics.Handler())
			serveHTTP(runner, "metrics", conf.MetricsListen, metricsMux)
		}
	}

	if len(b.Upstreams) == 0 {
		glog.Exit("at least one of -mqtt, -ws, -tcp is required")
	}
	glog.Infof("bridging %s", conf.Port)
	runner.Go(fx.NamedRun("bridge", b))
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

func serveHTTP(runner *fx.Runner, name, addr string, handler http.Handler) {
	srv := &http.Server{Addr: addr, Handler: handler}
	runner.Go(fx.NamedRun(name, fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	})))
}
