//go:build darwin && cgo

package coresim

/*
#cgo CFLAGS: -Wno-deprecated-declarations
#cgo LDFLAGS: -ldl -lobjc -framework Foundation
#include <stdlib.h>
#include <string.h>
#include <dlfcn.h>
#include <objc/runtime.h>
#include <objc/message.h>

static SEL sel(const char *name) {
	return sel_registerName(name);
}

static id msg_id(id obj, const char *name) {
	return ((id (*)(id, SEL))objc_msgSend)(obj, sel(name));
}

static id nsstring(const char *s) {
	return ((id (*)(id, SEL, const char *))objc_msgSend)((id)objc_getClass("NSString"), sel("stringWithUTF8String:"), s);
}

static char *copy_nsstring(id str) {
	if (str == nil) {
		return NULL;
	}
	const char *s = ((const char *(*)(id, SEL))objc_msgSend)(str, sel("UTF8String"));
	return s ? strdup(s) : NULL;
}

static char *copy_error(id err) {
	if (err == nil) {
		return strdup("no error returned");
	}
	char *s = copy_nsstring(msg_id(err, "localizedDescription"));
	return s ? s : strdup("unknown error");
}

static void *load_bundle(const char *path, char **errOut) {
	void *h = dlopen(path, RTLD_NOW | RTLD_GLOBAL);
	if (h == NULL) {
		const char *e = dlerror();
		*errOut = strdup(e ? e : "dlopen failed");
	}
	return h;
}

static void *lookup_class(const char *name) {
	return (void *)objc_getClass(name);
}

static int class_responds(void *cls, const char *name) {
	return class_respondsToSelector(object_getClass((id)cls), sel(name)) ? 1 : 0;
}

static int object_responds(void *obj, const char *name) {
	return class_respondsToSelector(object_getClass((id)obj), sel(name)) ? 1 : 0;
}

static void *pool_push(void) {
	id pool = msg_id((id)objc_getClass("NSAutoreleasePool"), "alloc");
	return (void *)msg_id(pool, "init");
}

static void pool_pop(void *pool) {
	msg_id((id)pool, "drain");
}

static void *shared_service_context(void *cls, const char *developerDir, char **errOut) {
	id err = nil;
	id ctx = ((id (*)(id, SEL, id, id *))objc_msgSend)((id)cls, sel("sharedServiceContextForDeveloperDir:error:"), nsstring(developerDir), &err);
	if (ctx == nil) {
		*errOut = copy_error(err);
	}
	return (void *)ctx;
}

static void *default_device_set(void *ctx, char **errOut) {
	id err = nil;
	id set = ((id (*)(id, SEL, id *))objc_msgSend)((id)ctx, sel("defaultDeviceSetWithError:"), &err);
	if (set == nil) {
		*errOut = copy_error(err);
	}
	return (void *)set;
}

static void *legacy_default_set(void *cls) {
	return (void *)msg_id((id)cls, "defaultSet");
}

static void *device_for_udid(void *set, const char *udid) {
	id devices = msg_id((id)set, "devicesByUDID");
	if (devices == nil) {
		return NULL;
	}
	id key = msg_id((id)objc_getClass("NSUUID"), "alloc");
	key = ((id (*)(id, SEL, id))objc_msgSend)(key, sel("initWithUUIDString:"), nsstring(udid));
	if (key == nil) {
		return NULL;
	}
	id dev = ((id (*)(id, SEL, id))objc_msgSend)(devices, sel("objectForKey:"), key);
	msg_id(key, "release");
	return (void *)dev;
}

static unsigned long long device_state(void *dev) {
	return ((unsigned long long (*)(id, SEL))objc_msgSend)((id)dev, sel("state"));
}

static char *device_name(void *dev) {
	return copy_nsstring(msg_id((id)dev, "name"));
}

static int set_notification_state(void *dev, unsigned long long state, const char *name, char **errOut) {
	id err = nil;
	BOOL ok = ((BOOL (*)(id, SEL, unsigned long long, id, id *))objc_msgSend)((id)dev, sel("darwinNotificationSetState:name:error:"), state, nsstring(name), &err);
	if (!ok) {
		*errOut = copy_error(err);
	}
	return ok ? 1 : 0;
}

static int post_notification(void *dev, const char *name, char **errOut) {
	id err = nil;
	BOOL ok = ((BOOL (*)(id, SEL, id, id *))objc_msgSend)((id)dev, sel("postDarwinNotification:error:"), nsstring(name), &err);
	if (!ok) {
		*errOut = copy_error(err);
	}
	return ok ? 1 : 0;
}
*/
import "C"

import (
	"errors"
	"runtime"
	"unsafe"

	"github.com/apex/log"
	"github.com/google/uuid"
)

const (
	selSharedServiceContext = "sharedServiceContextForDeveloperDir:error:"
	selDefaultDeviceSet     = "defaultDeviceSetWithError:"
	selDefaultSet           = "defaultSet"
	selSetState             = "darwinNotificationSetState:name:error:"
	selPostNotification     = "postDarwinNotification:error:"
)

// Context holds the loaded framework and the default device set.
//
// A Context pins the calling goroutine to its OS thread until Close so that
// every framework call shares one autorelease pool.
type Context struct {
	Path string

	lib       unsafe.Pointer
	pool      unsafe.Pointer
	deviceSet unsafe.Pointer
}

func cstringError(cerr *C.char) error {
	if cerr == nil {
		return nil
	}
	defer C.free(unsafe.Pointer(cerr))
	return errors.New(C.GoString(cerr))
}

func loadFramework(conf Config) (unsafe.Pointer, string, error) {
	var lastErr error
	for _, path := range conf.FrameworkCandidates() {
		cpath := C.CString(bundleExecutable(path))
		var cerr *C.char
		h := C.load_bundle(cpath, &cerr)
		C.free(unsafe.Pointer(cpath))
		if h != nil {
			return h, path, nil
		}
		lastErr = cstringError(cerr)
		log.WithError(lastErr).Debugf("Failed to load %s", path)
	}
	return nil, "", loadError(CodeFrameworkNotFound, lastErr, "unable to load CoreSimulator.framework (set DEVELOPER_DIR or --developer-dir)")
}

func lookupClass(name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.lookup_class(cname)
}

func classResponds(cls unsafe.Pointer, selector string) bool {
	csel := C.CString(selector)
	defer C.free(unsafe.Pointer(csel))
	return C.class_responds(cls, csel) == 1
}

func objectResponds(obj unsafe.Pointer, selector string) bool {
	csel := C.CString(selector)
	defer C.free(unsafe.Pointer(csel))
	return C.object_responds(obj, csel) == 1
}

// Open loads CoreSimulator.framework and resolves the default device set.
func Open(conf Config) (*Context, error) {
	runtime.LockOSThread()

	lib, path, err := loadFramework(conf)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}

	ctx := &Context{
		Path: path,
		lib:  lib,
		pool: C.pool_push(),
	}

	if info, err := ReadFrameworkInfo(path); err == nil {
		log.Debugf("Loaded %s", info)
	} else {
		log.Debugf("Loaded %s", path)
	}

	if err := ctx.resolveDeviceSet(conf.DeveloperDir); err != nil {
		ctx.Close()
		return nil, err
	}

	return ctx, nil
}

func (c *Context) resolveDeviceSet(developerDir string) error {
	if cls := lookupClass("SimServiceContext"); cls != nil {
		if !classResponds(cls, selSharedServiceContext) {
			return loadError(CodeSelectorNotFound, nil, "SimServiceContext does not respond to %s", selSharedServiceContext)
		}
		cdir := C.CString(developerDir)
		defer C.free(unsafe.Pointer(cdir))

		var cerr *C.char
		svc := C.shared_service_context(cls, cdir, &cerr)
		if svc == nil {
			return serviceError(CodeServiceContext, cstringError(cerr), "failed to create service context for %s", developerDir)
		}
		if !objectResponds(svc, selDefaultDeviceSet) {
			return loadError(CodeSelectorNotFound, nil, "SimServiceContext does not respond to %s", selDefaultDeviceSet)
		}
		set := C.default_device_set(svc, &cerr)
		if set == nil {
			return serviceError(CodeDeviceSet, cstringError(cerr), "failed to get default device set")
		}
		c.deviceSet = set
		return nil
	}

	log.Debug("SimServiceContext not found, falling back to SimDeviceSet")
	cls := lookupClass("SimDeviceSet")
	if cls == nil {
		return loadError(CodeClassNotFound, nil, "neither SimServiceContext nor SimDeviceSet found in %s", c.Path)
	}
	if !classResponds(cls, selDefaultSet) {
		return loadError(CodeSelectorNotFound, nil, "SimDeviceSet does not respond to %s", selDefaultSet)
	}
	set := C.legacy_default_set(cls)
	if set == nil {
		return serviceError(CodeDeviceSet, nil, "failed to get default device set")
	}
	c.deviceSet = set
	return nil
}

// Device looks the simulator up in the default device set.
func (c *Context) Device(udid uuid.UUID) (*Device, error) {
	cudid := C.CString(udid.String())
	defer C.free(unsafe.Pointer(cudid))

	h := C.device_for_udid(c.deviceSet, cudid)
	if h == nil {
		return nil, parameterError(CodeDeviceNotFound, "simulator %s not found", udid)
	}

	dev := &Device{
		UDID:   udid,
		State:  State(C.device_state(h)),
		handle: h,
	}
	if cname := C.device_name(h); cname != nil {
		dev.Name = C.GoString(cname)
		C.free(unsafe.Pointer(cname))
	}

	return dev, nil
}

// SetNotificationState sets the Darwin notification state name on the device.
func (c *Context) SetNotificationState(d *Device, name string, state uint64) error {
	if !objectResponds(d.handle, selSetState) {
		return loadError(CodeSelectorNotFound, nil, "SimDevice does not respond to %s", selSetState)
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var cerr *C.char
	if C.set_notification_state(d.handle, C.ulonglong(state), cname, &cerr) == 0 {
		return internalError(CodeSetState, cstringError(cerr), "failed to set %s state on %s", name, d.UDID)
	}
	return nil
}

// PostNotification broadcasts the Darwin notification name on the device.
func (c *Context) PostNotification(d *Device, name string) error {
	if !objectResponds(d.handle, selPostNotification) {
		return loadError(CodeSelectorNotFound, nil, "SimDevice does not respond to %s", selPostNotification)
	}
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))

	var cerr *C.char
	if C.post_notification(d.handle, cname, &cerr) == 0 {
		return internalError(CodePostNotification, cstringError(cerr), "failed to post %s on %s", name, d.UDID)
	}
	return nil
}

// Close releases the autorelease pool and the framework handle.
func (c *Context) Close() error {
	defer runtime.UnlockOSThread()
	if c.pool != nil {
		C.pool_pop(c.pool)
		c.pool = nil
	}
	c.deviceSet = nil
	// CoreSimulator registers ObjC classes and cannot be meaningfully unloaded
	return nil
}
