package main

import (
	"context"
	"net/http"

	"github.com/golang/glog"

	"github.com/robotalks/uartframe/pkg/device"
	"github.com/robotalks/uartframe/pkg/env"
	fx "github.com/robotalks/uartframe/pkg/framework"
	"github.com/robotalks/uartframe/pkg/l0/comm"
	"github.com/robotalks/uartframe/pkg/metrics"
)

func init() {
	env.SetupFlags()
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

	timer := device.NewSimTimer(device.DefaultPeriod)
	link := comm.NewEndpoint(port, conf.Device())
	link.Observer = metrics.NewLinkObserver("device")
	dev := device.New(uint32(conf.TimerFreq), timer, link)
	dev.ID = conf.Device()

	loop := fx.NewLoop()
	link.RxNotify = loop.TriggerNext
	loop.AddRunnable(fx.NamedRun("link", fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, port, func() error {
			return link.Run(ctx)
		})
	})))
	loop.AddController(fx.ControlFunc(func(cc fx.ControlContext) error {
		dev.HandlePending(cc.Context(), link)
		return nil
	}))

	runner := fx.NewServiceRunner().HandleSignals()
	if conf.MetricsListen != "" {
		srv := &http.Server{Addr: conf.MetricsListen, Handler: metrics.Handler()}
		runner.Go(fx.NamedRun("metrics", fx.RunFunc(func(ctx context.Context) error {
			return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
		})))
	}
	glog.Infof("device %d on %s", conf.Device(), conf.Port)
	runner.Go(fx.NamedRun("loop", loop))
	if err := runner.Wait(); err != nil {
		glog.Exit(err)
	}
}

