package daemon

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/charlie0129/battstat/pkg/config"
	"github.com/charlie0129/battstat/pkg/events"
	"github.com/charlie0129/battstat/pkg/version"
)

var errNoBatteryInfo = errors.New("no battery info received yet, subscribe first")

func (d *daemon) getStatus(c *gin.Context) {
	text, ok := d.display.Text()
	if !ok {
		c.IndentedJSON(http.StatusNotFound, errNoBatteryInfo.Error())
		_ = c.AbortWithError(http.StatusNotFound, errNoBatteryInfo)
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(text))
}

func (d *daemon) getSnapshot(c *gin.Context) {
	snap, ok := d.presenter.Last()
	if !ok {
		c.IndentedJSON(http.StatusNotFound, errNoBatteryInfo.Error())
		_ = c.AbortWithError(http.StatusNotFound, errNoBatteryInfo)
		return
	}

	c.IndentedJSON(http.StatusOK, snap)
}

func (d *daemon) getSubscription(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.presenter.State().String())
}

func (d *daemon) subscribe(c *gin.Context) {
	d.presenter.Subscribe()

	c.IndentedJSON(http.StatusCreated, "ok")
}

func (d *daemon) unsubscribe(c *gin.Context) {
	if err := d.presenter.Unsubscribe(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, events.ErrReceiverNotRegistered) {
			status = http.StatusConflict
		}
		logrus.Errorf("unsubscribe failed: %v", err)
		c.IndentedJSON(status, err.Error())
		_ = c.AbortWithError(status, err)
		return
	}

	c.IndentedJSON(http.StatusOK, "ok")
}

func (d *daemon) getHistory(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, d.history.Summary())
}

func (d *daemon) getConfig(c *gin.Context) {
	fc, err := config.NewRawFileConfigFromConfig(d.conf)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	c.IndentedJSON(http.StatusOK, fc)
}

func getVersion(c *gin.Context) {
	c.IndentedJSON(http.StatusOK, version.Version)
}
